// Package storage provides the durable key-value layer behind the console's
// persisted client state: the token pair and the last visited section.
//
// # Backends
//
//   - [Memory]: process-local map, used by tests and ephemeral shells.
//   - [BadgerKV]: on-disk store under the operator's home directory.
//   - [RedisKV]: shared store when several consoles reuse one login.
//
// # Architecture boundaries
//
// The KV contract is Get, an atomic multi-key SetMany, and
// an idempotent Delete. Callers that need two values to change together (the
// access/refresh pair) must write them through one SetMany call.
//
// # What this package must NOT do
//
//   - Interpret tokens or navigation payloads (values are opaque strings).
//   - Import trackAdmin, session, or nav (no upward imports).
package storage
