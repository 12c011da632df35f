// Package mockapi is an in-memory implementation of the track-day admin API.
//
// It issues real HS256 access tokens through jwt.Issuer and rotating opaque
// refresh tokens kept in a storage.KV, so a Console can be exercised end to
// end against it. Collections are schemaless JSON objects with integer ids.
// Test hooks (RevokeAccessTokens, SetRefreshEnabled, Stats) let callers force
// the 401 and refresh paths.
//
// # What this package must NOT do
//
//   - Import trackAdmin (its tests import this package).
//   - Persist anything beyond the refresh tokens in the supplied KV.
package mockapi
