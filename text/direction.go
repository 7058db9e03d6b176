package text

import "golang.org/x/text/unicode/bidi"

// DetectDirection returns the direction of the first strong character in s.
// Text without strong characters (digits, spaces, punctuation) gets fallback.
func DetectDirection(s string, fallback Direction) Direction {
	for _, r := range s {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.R, bidi.AL:
			return DirectionRTL
		case bidi.L:
			return DirectionLTR
		}
	}
	return fallback
}
