package strings

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes and drops combining marks so "José" folds to "jose".
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s, strips diacritics, turns every run of characters that is
// not a letter or digit into a single space and trims the result.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}

	var b strings.Builder
	b.Grow(len(out))
	pendingSpace := false
	for _, r := range out {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Tokens returns the folded words of s.
func Tokens(s string) []string {
	f := Fold(s)
	if f == "" {
		return nil
	}
	return strings.Split(f, " ")
}

// ContainsPhrase reports whether phrase occurs in text as a run of whole
// words, ignoring case, punctuation and diacritics. An empty phrase never
// matches.
func ContainsPhrase(text, phrase string) bool {
	p := Fold(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+Fold(text)+" ", " "+p+" ")
}

// MatchAny returns the first phrase contained in text, or "" if none is.
func MatchAny(text string, phrases []string) string {
	for _, p := range phrases {
		if ContainsPhrase(text, p) {
			return p
		}
	}
	return ""
}
