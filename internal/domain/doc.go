// Package domain contains the core domain entities and value objects for fahlink.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (WebSocket, logging, metrics) and
// contains only pure logic over the mirrored client document.
//
// # Entities
//
//   - [Value]: an immutable JSON document node, tagged by [Kind]
//   - [ApplyPatch]: copy-on-write application of an incremental update
//   - [Command]: a one-shot outbound request to the remote client
//   - [Machine], [Unit]: projections read out of the mirrored document
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
