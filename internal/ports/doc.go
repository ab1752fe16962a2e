// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the application needs from external systems
// without specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Dialer] / [Conn]: WebSocket connection to the remote folding client
//   - [Logger]: structured logging abstraction
//   - [Metrics]: counters for the sync loop's observability hook
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (gorilla/websocket, zerolog, prometheus).
//
// This separation enables:
//   - Testing application logic with in-memory fakes
//   - Swapping infrastructure without changing sync logic
//   - Clear boundaries and dependency direction
package ports
