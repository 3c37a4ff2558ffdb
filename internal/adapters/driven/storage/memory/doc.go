// Package memory provides the in-memory storage adapters: the document
// store holding section-indexed act texts and the result store holding
// immutable, filterable result sets. All state is process-lifetime; both
// stores enforce TTL expiry lazily and evict least recently accessed
// entries under capacity pressure.
package memory
