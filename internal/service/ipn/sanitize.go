package ipn

import (
	"regexp"
	"strings"
)

var (
	htmlTags     = regexp.MustCompile(`(?s)<[^>]*>`)
	percentOctet = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// sanitizeKey lower-cases s and keeps only ASCII letters, digits,
// underscores and dashes.
func sanitizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sanitizeText makes a posted value safe to store in a note: markup and
// percent-encoded octets are removed and whitespace runs collapse to a
// single space.
func sanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = htmlTags.ReplaceAllString(s, "")
	s = percentOctet.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
