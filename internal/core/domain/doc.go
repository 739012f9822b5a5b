// Package domain defines the core business entities for UrbanBot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Topic: A closed classification label for a question
//   - EventRecord: A read-only row from the city event store
//   - Report: The formatted answer derived from a model completion
//   - Answer: The result envelope of one orchestration call
//   - Settings: Process-wide configuration loaded at startup
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
