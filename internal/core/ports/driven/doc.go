// Package driven defines secondary ports: interfaces the core requires
// from infrastructure (backend search sessions, stores, settings).
// Adapters in internal/adapters/driven implement these.
package driven
