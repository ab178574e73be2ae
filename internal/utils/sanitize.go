package utils

import (
	"html"
	"strings"
)

// StripHTML removes markup from user-supplied free text. Entities are
// decoded before stripping so that encoded payloads such as
// "&lt;script&gt;" cannot survive a single pass; decoding repeats until
// the string stops changing (bounded to avoid pathological input). The
// bodies of <script> and <style> elements are dropped entirely, all other
// tags are removed and their text content kept.
func StripHTML(s string) string {
	for i := 0; i < 4; i++ {
		decoded := html.UnescapeString(s)
		if decoded == s {
			break
		}
		s = decoded
	}
	return strings.TrimSpace(stripTags(s))
}

// StripIdentifier sanitizes identifier-like fields (usernames, emails).
// After tag stripping it keeps only the characters [A-Za-z0-9@._-] so a
// payload cannot smuggle quotes or angle brackets into credentials.
func StripIdentifier(s string) string {
	s = StripHTML(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '@' || r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripTags removes every <...> sequence. When the tag opens a script or
// style element, everything up to and including the matching closing tag
// is discarded as well. An unterminated tag swallows the rest of the
// string, which is the safe direction to fail.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '<' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			break
		}
		tag := strings.ToLower(strings.TrimSpace(s[i+1 : i+end]))
		i += end + 1
		name := tagName(tag)
		if name == "script" || name == "style" {
			close := "</" + name
			rest := strings.ToLower(s[i:])
			at := strings.Index(rest, close)
			if at < 0 {
				break
			}
			i += at
			if gt := strings.IndexByte(s[i:], '>'); gt >= 0 {
				i += gt + 1
			} else {
				break
			}
		}
	}
	return b.String()
}

func tagName(tag string) string {
	tag = strings.TrimPrefix(tag, "/")
	for j := 0; j < len(tag); j++ {
		if tag[j] == ' ' || tag[j] == '\t' || tag[j] == '\n' || tag[j] == '/' {
			return tag[:j]
		}
	}
	return tag
}
