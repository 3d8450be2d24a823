// Package phone canonicalizes free-form phone numbers for caller-ID matching.
//
// International numbers arrive in wildly inconsistent formats (leading "+",
// country code present or absent, punctuation). Rather than full E.164
// parsing, calldex trades precision for recall: it generates several
// candidate representations and matches on digit substrings, accepting the
// false-positive risk of two numbers sharing a 10-digit tail over the
// false-negative risk of missing a stored contact.
package phone

import "strings"

// fuzzyMinDigits is the smallest digit count worth matching against a
// contact list. Anything shorter is noise, not a search term.
const fuzzyMinDigits = 4

// suffixDigits is how many trailing digits identify a number across
// country-code ambiguity.
const suffixDigits = 10

// Normalize returns the canonical comparable form of raw.
// A "+"-prefixed input keeps the "+" and drops every other non-digit;
// anything else is reduced to digits only. Empty or non-numeric input
// yields "".
func Normalize(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "+") {
		return "+" + digits
	}
	return digits
}

// Variants returns the deduplicated set of representations used for an
// OR-match against stored values: the original input, the normalized form,
// the digits-only form, the last 10 digits (only when more than 10 exist),
// and a "+"-prefixed digits form when the input was not already prefixed.
// Order is insignificant.
func Variants(raw string) []string {
	seen := make(map[string]struct{}, 5)
	out := make([]string, 0, 5)

	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	digits := digitsOnly(raw)

	add(raw)
	add(Normalize(raw))
	add(digits)
	if len(digits) > suffixDigits {
		add(digits[len(digits)-suffixDigits:])
	}
	if digits != "" && !strings.HasPrefix(strings.TrimSpace(raw), "+") {
		add("+" + digits)
	}

	return out
}

// NormalizeForFuzzyLookup returns the digits-only form of raw, or ok=false
// when fewer than 4 digits remain. Callers MUST NOT run a lookup on a
// not-ok result; a sub-4-digit fragment would match essentially anything.
func NormalizeForFuzzyLookup(raw string) (string, bool) {
	digits := digitsOnly(raw)
	if len(digits) < fuzzyMinDigits {
		return "", false
	}
	return digits, true
}

// MatchFragment returns the trailing digits used as the store-side
// substring match: the last 10 digits, or the whole string when shorter.
func MatchFragment(digits string) string {
	if len(digits) > suffixDigits {
		return digits[len(digits)-suffixDigits:]
	}
	return digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
