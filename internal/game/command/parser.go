package command

import (
	"strings"
	"unicode"
)

// Abbreviations maps the short verbs players type to the verbs they stand
// for.
var Abbreviations = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
	"u":  "up",
	"d":  "down",
	"i":  "inventory",
	"l":  "look",
	"x":  "examine",
	"?":  "help",
	"'":  "say",
}

// SplitVerb splits a line into its lowercased first word and the rest.
//
// Postcondition: if line is blank, verb is empty.
func SplitVerb(line string) (verb, rest string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(line), ""
	}
	return strings.ToLower(line[:i]), strings.TrimSpace(line[i+1:])
}

// Normalize prepares a raw input line for parsing. A leading punctuation
// verb is split from its argument ("?take" becomes "? take") and an
// abbreviated verb is replaced by the verb it stands for. Wizard ('!') and
// meta ('@') verbs keep their prefix.
func Normalize(line string, abbrev map[string]string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	first := rune(line[0])
	if first != '!' && first != '@' && !unicode.IsLetter(first) && !unicode.IsDigit(first) && len(line) > 1 {
		line = line[:1] + " " + strings.TrimSpace(line[1:])
	}
	verb, rest := SplitVerb(line)
	if full, ok := abbrev[verb]; ok {
		verb = full
	}
	if rest == "" {
		return verb
	}
	return verb + " " + rest
}
