// Package identity is the calldex user read-model.
//
// Account provisioning and profile CRUD belong to the surrounding
// application; the auth bridge only needs to map a provider-verified email
// onto an existing account and to resolve a user id for scoping queries.
//
// This package is intentionally dependency-light and security-first.
package identity
