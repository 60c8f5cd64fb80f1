// Package services implements the core search engine: the result
// aggregator over the primary and migrated backend sessions, the
// navigation cursor, and the controller that binds them behind the
// driving port.
package services
