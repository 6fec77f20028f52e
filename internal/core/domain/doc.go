// Package domain defines the core entities for brain.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded piece of document text plus its embedding
//   - Collection: A named, persistent set of chunks
//   - QueryResult: A chunk ranked against a query vector
//   - IngestReport: The outcome of ingesting one directory
//   - AppSettings: Resolved runtime configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
