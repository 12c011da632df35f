// Package flows contains pure orchestrators for the console's session
// operations: login, refresh-and-recover, and the authenticated request loop.
//
// Each Run* function accepts a typed dependency struct and returns a result
// value. HTTP transport, token persistence, and logout side effects are all
// injected, so the retry and recovery rules can be tested without a server.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import trackAdmin (to avoid import cycles).
//   - Perform I/O directly; all I/O goes through dependency functions.
package flows
