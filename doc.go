// Package trackAdmin is the operator console client for the track-day admin API.
//
// A [Console] owns one authenticated session: it logs in, keeps the access
// token fresh through a background [Monitor], transparently recovers from a
// single 401 per call, and exposes typed clients for users, events, tracks,
// face-to-face competitions, cars and schedules. Console methods are safe to
// call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// trackAdmin is the public surface. Token persistence lives in session and
// storage, JWT expiry decoding in jwt, URL-synchronised navigation in nav.
// The login, refresh and request retry rules are pure flows under
// internal/flows and are never exported.
//
// # What this package must NOT do
//
//   - Log or return raw token values outside session.Store.
//   - Retry a logical call more than once.
//   - Import nav or any sub-package that re-imports trackAdmin.
package trackAdmin
