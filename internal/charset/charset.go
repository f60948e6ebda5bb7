// Package charset turns the user's --charset selector and --custom-chars
// string into the deduplicated, ordered alphabet that the pattern and
// brute-force generators enumerate over.
package charset

import "fmt"

// ErrInvalidCharsetSelector is returned by Resolve when selector contains a
// rune outside {a, A, n, s, x}.
type ErrInvalidCharsetSelector struct {
	Rune rune
}

func (e *ErrInvalidCharsetSelector) Error() string {
	return fmt.Sprintf("charset: invalid selector rune %q (want one of a, A, n, s, x)", e.Rune)
}

const (
	lower   = "abcdefghijklmnopqrstuvwxyz"
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
	special = "!@#$%^&*()-_=+[]{}|;:,.<>?/"
)

// Resolve expands selector (raw --charset value) and appends the runes of
// custom (raw --custom-chars value) that are not already present, in
// first-seen order. The output ordering is always lowercase, uppercase,
// digits, special, then custom-appended-in-input-order — regardless of the
// order or duplication of letters within selector itself, so that two runs
// with differently-ordered selectors enumerate identically.
//
// Resolve returns the empty alphabet iff both selector and custom are empty.
func Resolve(selector, custom string) ([]rune, error) {
	var wantLower, wantUpper, wantDigits, wantSpecial bool

	for _, r := range selector {
		switch r {
		case 'a':
			wantLower = true
		case 'A':
			wantUpper = true
		case 'n':
			wantDigits = true
		case 's':
			wantSpecial = true
		case 'x':
			wantLower, wantUpper, wantDigits, wantSpecial = true, true, true, true
		default:
			return nil, &ErrInvalidCharsetSelector{Rune: r}
		}
	}

	seen := make(map[rune]bool)
	var out []rune
	appendSet := func(s string) {
		for _, r := range s {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}

	if wantLower {
		appendSet(lower)
	}
	if wantUpper {
		appendSet(upper)
	}
	if wantDigits {
		appendSet(digits)
	}
	if wantSpecial {
		appendSet(special)
	}
	appendSet(custom)

	return out, nil
}
