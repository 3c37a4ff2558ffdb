// Package driven defines the driven ports: interfaces the core services
// require from infrastructure adapters (stores, indexers, the upstream
// act API). Adapters implement these; services depend only on them.
package driven
