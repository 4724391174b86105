package lang

import "strings"

var pluralIrregular = map[string]string{
	"child":  "children",
	"deer":   "deer",
	"fish":   "fish",
	"foot":   "feet",
	"goose":  "geese",
	"man":    "men",
	"mouse":  "mice",
	"ox":     "oxen",
	"person": "people",
	"sheep":  "sheep",
	"tooth":  "teeth",
	"woman":  "women",
}

var pluralOes = map[string]bool{
	"buffalo": true, "domino": true, "echo": true, "hero": true, "mosquito": true,
	"potato": true, "tomato": true, "torpedo": true, "veto": true, "volcano": true,
}

var pluralFs = map[string]bool{
	"belief": true, "chef": true, "chief": true, "cliff": true, "proof": true, "roof": true,
}

// Pluralize returns the plural of word unless amount is exactly 1.
func Pluralize(word string, amount float64) string {
	if amount == 1 || word == "" {
		return word
	}
	if p, ok := pluralIrregular[word]; ok {
		return p
	}
	switch {
	case strings.HasSuffix(word, "is"):
		return word[:len(word)-2] + "es"
	case strings.HasSuffix(word, "z"):
		return word + "zes"
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "sh"), strings.HasSuffix(word, "ch"):
		return word + "es"
	case strings.HasSuffix(word, "y") && len(word) > 1 && !isVowel(word[len(word)-2]):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(word, "o"):
		if pluralOes[word] {
			return word + "es"
		}
		return word + "s"
	case pluralFs[word]:
		return word + "s"
	case strings.HasSuffix(word, "fe"):
		return word[:len(word)-2] + "ves"
	case strings.HasSuffix(word, "f"):
		return word[:len(word)-1] + "ves"
	}
	return word + "s"
}

func isVowel(c byte) bool {
	return strings.IndexByte("aeiou", c) >= 0
}

// Fullverb returns the gerund ("-ing" form) of verb.
// A final silent e is dropped (poke → poking), ie becomes y (lie → lying)
// and the final consonant of a short consonant-vowel-consonant verb is
// doubled (pat → patting).
func Fullverb(verb string) string {
	n := len(verb)
	switch {
	case n == 0:
		return verb
	case strings.HasSuffix(verb, "ie"):
		return verb[:n-2] + "ying"
	case strings.HasSuffix(verb, "e") && n > 2 && !strings.HasSuffix(verb, "ee") &&
		!strings.HasSuffix(verb, "ye") && !strings.HasSuffix(verb, "oe"):
		return verb[:n-1] + "ing"
	case n >= 3 && vowelGroups(verb) == 1 && !isVowel(verb[n-1]) &&
		!strings.ContainsRune("wxy", rune(verb[n-1])) && isVowel(verb[n-2]) && !isVowel(verb[n-3]):
		return verb + verb[n-1:] + "ing"
	}
	return verb + "ing"
}

func vowelGroups(word string) int {
	groups := 0
	inGroup := false
	for i := 0; i < len(word); i++ {
		v := isVowel(word[i])
		if v && !inGroup {
			groups++
		}
		inGroup = v
	}
	return groups
}
