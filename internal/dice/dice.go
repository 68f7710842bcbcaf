package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidExpression is returned when the input contains no dice
	// notation, or when the count or sides parse to a non-positive value.
	ErrInvalidExpression = errors.New("invalid dice expression")

	// ErrOutOfRange is returned when the count or sides exceed the
	// configured ceilings. Oversized requests are rejected rather than
	// clamped so broadcast payloads stay bounded.
	ErrOutOfRange = errors.New("dice expression out of range")
)

// Limits bounds how many dice may be rolled at once and how many faces a
// die may have.
type Limits struct {
	MaxCount int
	MaxSides int
}

// DefaultLimits matches the table rules: at most 50 dice of up to 1000 sides.
var DefaultLimits = Limits{MaxCount: 50, MaxSides: 1000}

// Expression is a parsed dice notation. It is immutable once parsed.
type Expression struct {
	Count    int `json:"count"`
	Sides    int `json:"sides"`
	Modifier int `json:"modifier"`
}

// Result holds the outcome of evaluating an Expression.
type Result struct {
	Rolls    []int  `json:"rolls"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
	Detail   string `json:"detail"`
}

var (
	commandPrefix = regexp.MustCompile(`(?i)^/roll\s*`)
	notation      = regexp.MustCompile(`(?i)(\d*)d(\d+)((?:[+-]\d+)*)`)
	modifierTerm  = regexp.MustCompile(`[+-]\d+`)
)

// Parse interprets a dice notation such as "/roll 2d6+3" using DefaultLimits.
func Parse(input string) (Expression, error) {
	return ParseWithLimits(input, DefaultLimits)
}

// ParseWithLimits interprets a dice notation such as "2d10+3-1".
//
// The optional "/roll" command marker is stripped before matching. The count
// defaults to 1 when omitted; the sides are mandatory. Modifier terms are
// summed algebraically. Text after a valid match is ignored rather than
// failing the parse, which keeps the notation forgiving of chat suffixes
// like "2d6 for initiative".
func ParseWithLimits(input string, limits Limits) (Expression, error) {
	trimmed := commandPrefix.ReplaceAllString(strings.TrimSpace(input), "")

	match := notation.FindStringSubmatch(trimmed)
	if match == nil {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, input)
	}

	count := 1
	if match[1] != "" {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, input)
		}
		count = n
	}

	sides, err := strconv.Atoi(match[2])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, input)
	}

	if count <= 0 || sides <= 0 {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, input)
	}
	if count > limits.MaxCount || sides > limits.MaxSides {
		return Expression{}, fmt.Errorf("%w: %dd%d exceeds %dd%d", ErrOutOfRange, count, sides, limits.MaxCount, limits.MaxSides)
	}

	modifier := 0
	for _, term := range modifierTerm.FindAllString(match[3], -1) {
		v, err := strconv.Atoi(term)
		if err != nil {
			return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, input)
		}
		modifier += v
	}

	return Expression{Count: count, Sides: sides, Modifier: modifier}, nil
}

// UserMessage converts a parse failure into the notification shown to
// the player, shared by the REST endpoint and the websocket relay.
func UserMessage(err error) string {
	if errors.Is(err, ErrOutOfRange) {
		return "Too many dice for the table, keep it reasonable"
	}
	return "Invalid format. Try /roll 1d20+3"
}

// Source yields values in [0, 1). rand.Float64 is the production source;
// tests substitute a deterministic one.
type Source func() float64

// Roll evaluates an Expression against the given random source.
//
// Exactly Count draws are consumed; each draw r maps to a face via
// floor(r*Sides)+1, so every roll lands in [1, Sides]. Roll cannot fail:
// validation happens at parse time.
func Roll(expr Expression, source Source) Result {
	rolls := make([]int, expr.Count)
	total := 0
	for i := range rolls {
		face := int(source()*float64(expr.Sides)) + 1
		rolls[i] = face
		total += face
	}
	total += expr.Modifier

	return Result{
		Rolls:    rolls,
		Modifier: expr.Modifier,
		Total:    total,
		Detail:   formatDetail(rolls, expr.Modifier, total),
	}
}

// NewSource returns a seeded random source, mainly for replaying rolls.
func NewSource(seed int64) Source {
	rng := rand.New(rand.NewSource(seed))
	return rng.Float64
}

// formatDetail renders a roll as "3 + 5 +2 = 10" for chat display.
func formatDetail(rolls []int, modifier, total int) string {
	var b strings.Builder
	for i, v := range rolls {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(strconv.Itoa(v))
	}
	if modifier != 0 {
		fmt.Fprintf(&b, " %+d", modifier)
	}
	fmt.Fprintf(&b, " = %d", total)
	return b.String()
}
