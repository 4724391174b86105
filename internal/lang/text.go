package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/buildkite/shellwords"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// Capital uppercases the first letter of s and leaves the rest untouched.
func Capital(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return upper.String(string(r)) + s[size:]
}

// Fullstop terminates sentence with punct unless it already ends in punctuation.
// Trailing whitespace is removed first.
func Fullstop(sentence string, punct string) string {
	sentence = strings.TrimRightFunc(sentence, unicode.IsSpace)
	if sentence == "" {
		return sentence
	}
	if strings.ContainsAny(sentence[len(sentence)-1:], "!?.,;:-=") {
		return sentence
	}
	return sentence + punct
}

var noPossessive = map[string]bool{
	"my": true, "your": true, "his": true, "her": true, "its": true, "our": true, "their": true,
}

// PossessiveLetter returns the suffix that turns name into a possessive.
func PossessiveLetter(name string) string {
	if name == "" || strings.HasSuffix(name, " own") || noPossessive[name] {
		return ""
	}
	return "'s"
}

// Possessive returns the possessive form of name ("julie" → "julie's").
func Possessive(name string) string {
	return name + PossessiveLetter(name)
}

// Join joins words into an English enumeration with an Oxford comma:
// "a", "a and b", "a, b, and c". conj defaults to "and" when empty.
func Join(words []string, conj string) string {
	if conj == "" {
		conj = "and"
	}
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	case 2:
		return words[0] + " " + conj + " " + words[1]
	}
	return strings.Join(words[:len(words)-1], ", ") + ", " + conj + " " + words[len(words)-1]
}

// Split splits s into words, honoring single and double quoted groups.
// Quoted groups are trimmed; an unclosed quote is kept as part of its token.
func Split(s string) []string {
	if wellQuoted(s) {
		parts, err := shellwords.SplitPosix(s)
		if err == nil {
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		}
	}
	return splitLoose(s)
}

// wellQuoted reports whether every quote character in s opens at the start of
// a word and is closed by a matching quote at the end of a word. Apostrophes
// inside words ("julie's") and unclosed quotes make it false.
func wellQuoted(s string) bool {
	if strings.Contains(s, `\`) {
		return false
	}
	var open rune
	prev := ' '
	runes := []rune(s)
	for i, r := range runes {
		if r == '\'' || r == '"' {
			switch {
			case open == 0 && unicode.IsSpace(prev):
				open = r
			case open == r:
				if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
					return false
				}
				open = 0
			case open == 0:
				return false
			}
		}
		prev = r
	}
	return open == 0
}

// splitLoose splits on whitespace and groups quoted runs that are closed; an
// unclosed quote stays attached to its word.
func splitLoose(s string) []string {
	var out []string
	fields := strings.Fields(s)
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		q := f[0]
		if q == '\'' || q == '"' {
			closing := -1
			for j := i; j < len(fields); j++ {
				candidate := fields[j]
				if j == i {
					candidate = candidate[1:]
				}
				if strings.HasSuffix(candidate, string(q)) {
					closing = j
					break
				}
			}
			if closing >= 0 {
				group := strings.Join(fields[i:closing+1], " ")
				group = strings.TrimSpace(group[1 : len(group)-1])
				if group != "" {
					out = append(out, group)
				}
				i = closing
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
