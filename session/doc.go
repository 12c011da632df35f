// Package session owns the console's token pair: it keeps the access and
// refresh tokens in memory, mirrors them into a durable [storage.KV] under
// fixed keys, and evaluates access-token expiry.
//
// # Invariants
//
//   - Both tokens are written together through [Store.SetSession]; there is no
//     single-token setter.
//   - [Store.IsExpired] fails closed: absent, malformed, or undecodable tokens
//     are expired, and a token expiring within the safety margin is expired.
//   - Every [Store.ClearSession] advances the session epoch so callers can
//     detect that a response belongs to a session that no longer exists.
//
// # What this package must NOT do
//
//   - Make network calls (refresh is orchestrated by the console).
//   - Import trackAdmin or nav.
package session
