// Package token provides the secret-generation and hashing primitives for calldex.
//
// It is the single source of truth for how device-token secrets are hashed
// before they touch storage.
//
// Design goals:
// - Default dev/back-compat mode: SHA-256(secret) when no HMAC key is configured.
// - Production-enforced mode: HMAC-SHA256(secret, key) when policy requires it.
// - Stable 64-char hex output for storage lookup keys.
//
// Environment:
// - CALLDEX_TOKEN_HMAC_KEY: when set, enables HMAC mode.
// Policy:
//   - If RequireTokenHMAC=true, callers MUST enforce a minimum key size (>= 32 bytes)
//     and MUST use HMAC (no SHA fallback).
package token
