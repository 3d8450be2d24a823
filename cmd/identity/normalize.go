package identity

import "strings"

// NormalizeEmail canonicalizes an address for account matching: whitespace
// trimmed, everything lower-cased. The provider callback and the users
// table both pass addresses through this function, so lookups always
// compare like with like. Provider-specific folding (gmail dots, plus
// tags) is deliberately not applied — the address is an opaque account key
// here, not a mailbox.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
