// Package glossary defines the core domain types for the glossary service:
// entries, their revision history records, and likes, along with input
// validation, sanitization, and the error taxonomy shared by the storage and
// HTTP layers.
package glossary
