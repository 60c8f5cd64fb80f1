// Package domain contains the core business entities for Convofind.
// These types have no dependencies on infrastructure or frameworks.
package domain
