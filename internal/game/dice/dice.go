// Package dice rolls dice expressions such as "3d6", "2d8+1" or "4d6kh3".
// It backs stat generation for new livings and the player's dice command.
package dice

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/tale/internal/lang"
)

// Expression is a parsed dice expression.
//
// Invariant: Count >= 1, Sides >= 2, 0 <= KeepHighest < Count.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int
}

// MaxDice bounds the number of dice in one expression.
const MaxDice = 100

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Parse parses expressions of the form [N]dS[khK][+M|-M].
//
// Postcondition: returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: invalid expression %q", expr)
	}
	e := Expression{Raw: s, Count: 1}
	if m[1] != "" {
		e.Count, _ = strconv.Atoi(m[1])
	}
	e.Sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		e.KeepHighest, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		e.Modifier, _ = strconv.Atoi(m[4])
	}
	switch {
	case e.Count < 1 || e.Count > MaxDice:
		return Expression{}, fmt.Errorf("dice: die count in %q must be between 1 and %d", expr, MaxDice)
	case e.Sides < 2:
		return Expression{}, fmt.Errorf("dice: die sides in %q must be >= 2", expr)
	case m[3] != "" && (e.KeepHighest < 1 || e.KeepHighest >= e.Count):
		return Expression{}, fmt.Errorf("dice: kh value in %q must be > 0 and < %d", expr, e.Count)
	}
	return e, nil
}

// MustParse is Parse for package-level constants; it panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// RollResult holds the dice kept from one roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll for players, e.g. "2d6+3: 4 and 5, plus 3, total 12".
func (r RollResult) String() string {
	values := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		values[i] = strconv.Itoa(d)
	}
	var b strings.Builder
	b.WriteString(r.Expression)
	b.WriteString(": ")
	b.WriteString(lang.Join(values, "and"))
	switch {
	case r.Modifier > 0:
		fmt.Fprintf(&b, ", plus %d", r.Modifier)
	case r.Modifier < 0:
		fmt.Fprintf(&b, ", minus %d", -r.Modifier)
	}
	fmt.Fprintf(&b, ", total %d", r.Total())
	return b.String()
}

// Roll evaluates e with src.
//
// Postcondition: len(Dice) == Count, or KeepHighest when that is set, sorted
// highest first in the latter case.
func Roll(e Expression, src Source) RollResult {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	if e.KeepHighest > 0 {
		sort.Sort(sort.Reverse(sort.IntSlice(rolled)))
		rolled = rolled[:e.KeepHighest]
	}
	return RollResult{Expression: e.Raw, Dice: rolled, Modifier: e.Modifier}
}

// RollExpr parses and rolls expr.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}
