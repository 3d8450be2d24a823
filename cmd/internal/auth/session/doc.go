// Package session issues the browser sessions that back the cookie
// credential used inside the mobile embedded web view.
//
// Expiry is the sole lifecycle control: there is no explicit delete path in
// this core. Verification of browser requests against the session row is
// the standard cookie-auth path shared with the rest of the application.
package session
