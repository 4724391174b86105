package lang

import "fmt"

// Gender is one of "m", "f" or "n" and drives pronoun selection.
type Gender string

const (
	Male   Gender = "m"
	Female Gender = "f"
	Neuter Gender = "n"
)

// ParseGender validates a gender code.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(s); g {
	case Male, Female, Neuter:
		return g, nil
	}
	return "", fmt.Errorf("lang: invalid gender %q, expected m, f or n", s)
}

// Name returns "male", "female" or "neuter".
func (g Gender) Name() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	}
	return "neuter"
}

// Subjective returns he/she/it.
func (g Gender) Subjective() string {
	switch g {
	case Male:
		return "he"
	case Female:
		return "she"
	}
	return "it"
}

// Objective returns him/her/it.
func (g Gender) Objective() string {
	switch g {
	case Male:
		return "him"
	case Female:
		return "her"
	}
	return "it"
}

// Possessive returns his/her/its.
func (g Gender) Possessive() string {
	switch g {
	case Male:
		return "his"
	case Female:
		return "her"
	}
	return "its"
}
