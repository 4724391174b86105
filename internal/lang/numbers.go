package lang

import (
	"fmt"
	"math"
	"strconv"
)

var numberWords = map[int]string{
	0: "zero", 1: "one", 2: "two", 3: "three", 4: "four", 5: "five", 6: "six",
	7: "seven", 8: "eight", 9: "nine", 10: "ten", 11: "eleven", 12: "twelve",
	13: "thirteen", 14: "fourteen", 15: "fifteen", 16: "sixteen", 17: "seventeen",
	18: "eighteen", 19: "nineteen", 20: "twenty", 30: "thirty", 40: "forty",
	50: "fifty", 60: "sixty", 70: "seventy", 80: "eighty", 90: "ninety",
}

// SpellNumber spells out n in words. Integers 0..20 and the round tens up to
// ninety are written out, other integers are rendered as digits. Negative
// numbers get a "minus" prefix and a fraction of exactly one half is written
// as "and a half".
//
// Postcondition: returns an error for any other fractional value.
func SpellNumber(n float64) (string, error) {
	if n < 0 {
		s, err := SpellNumber(-n)
		if err != nil {
			return "", err
		}
		return "minus " + s, nil
	}
	whole, frac := math.Modf(n)
	switch frac {
	case 0:
		return spellInt(int(whole)), nil
	case 0.5:
		if whole == 0 {
			return "a half", nil
		}
		return spellInt(int(whole)) + " and a half", nil
	}
	return "", fmt.Errorf("lang: can only spell whole numbers or halves, got %v", n)
}

func spellInt(n int) string {
	if w, ok := numberWords[n]; ok {
		return w
	}
	return strconv.Itoa(n)
}
