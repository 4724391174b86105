// Package lang contains the English language helpers used to build the
// messages players see: articles, capitalisation, joining, pluralisation,
// gerunds, spelled-out numbers, pronouns and the adverb vocabulary.
package lang

import (
	"strings"
	"sync"
	"unicode"
)

var (
	aMu         sync.RWMutex
	aExceptions = map[string]string{
		"euro":       "a",
		"european":   "a",
		"heir":       "an",
		"honest":     "an",
		"honor":      "an",
		"honour":     "an",
		"hour":       "an",
		"once":       "a",
		"one":        "a",
		"unanimous":  "a",
		"uniform":    "a",
		"union":      "a",
		"unique":     "a",
		"unit":       "a",
		"universal":  "a",
		"universe":   "a",
		"university": "a",
		"usage":      "a",
		"use":        "a",
		"useful":     "a",
		"user":       "a",
		"usual":      "a",
		"utensil":    "a",
		"utility":    "a",
	}
)

// RegisterAExceptions adds per-word article overrides. Keys are matched
// case-insensitively against the first word of the phrase; values are "a" or "an".
func RegisterAExceptions(exceptions map[string]string) {
	aMu.Lock()
	defer aMu.Unlock()
	for word, article := range exceptions {
		aExceptions[strings.ToLower(word)] = article
	}
}

// A prefixes word with the indefinite article "a" or "an".
//
// Postcondition: A(A(s)) == A(s); a phrase already starting with "a " or "an " is unchanged.
func A(word string) string {
	if strings.TrimSpace(word) == "" {
		return word
	}
	if strings.HasPrefix(word, "a ") || strings.HasPrefix(word, "an ") {
		return word
	}
	first := strings.ToLower(strings.Fields(word)[0])
	aMu.RLock()
	article, ok := aExceptions[first]
	aMu.RUnlock()
	if ok {
		return article + " " + word
	}
	r := []rune(first)[0]
	if strings.ContainsRune("aeiou", unicode.ToLower(r)) {
		return "an " + word
	}
	return "a " + word
}
