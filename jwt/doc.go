// Package jwt decodes access-token expiry on the client side and issues signed
// access tokens for the mock backend.
//
// # Client side
//
// [DecodeExpiry] reads the exp claim from the token's payload segment without
// verifying the signature. The console never holds the signing key; it only
// needs to know when the backend will start rejecting the token.
//
// # Issuer side
//
// [Issuer] signs and verifies HS256 or Ed25519 tokens. It backs the mockapi
// package and tests that need realistic tokens.
//
// # What this package must NOT do
//
//   - Treat an unverified decode as proof of identity.
//   - Perform I/O or import trackAdmin.
package jwt
