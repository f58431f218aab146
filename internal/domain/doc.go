// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (identifiers, messages, profile) and contracts
// (storage and transport interfaces) only.
package domain
