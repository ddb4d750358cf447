// Package model implements the schema-driven dynamic object model.
//
// An Object wraps the raw JSON map of one entity and materializes typed
// field values lazily on first Get, following the entity's schema.
// Nested entities and collections share the root's Context reference, so
// locale and error-handling settings reach the whole object graph.
package model
