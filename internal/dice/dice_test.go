package dice

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Expression
		wantErr error
	}{
		{
			name:  "plain d20",
			input: "1d20",
			want:  Expression{Count: 1, Sides: 20},
		},
		{
			name:  "count defaults to one",
			input: "d8",
			want:  Expression{Count: 1, Sides: 8},
		},
		{
			name:  "command marker stripped",
			input: "/roll 2d6+3",
			want:  Expression{Count: 2, Sides: 6, Modifier: 3},
		},
		{
			name:  "command marker is case-insensitive",
			input: "/ROLL 1d4",
			want:  Expression{Count: 1, Sides: 4},
		},
		{
			name:  "uppercase separator",
			input: "3D6",
			want:  Expression{Count: 3, Sides: 6},
		},
		{
			name:  "modifiers sum algebraically",
			input: "2d10+3-1",
			want:  Expression{Count: 2, Sides: 10, Modifier: 2},
		},
		{
			name:  "stacked modifiers",
			input: "d8-1+4",
			want:  Expression{Count: 1, Sides: 8, Modifier: 3},
		},
		{
			name:    "no notation",
			input:   "hello",
			wantErr: ErrInvalidExpression,
		},
		{
			name:    "sides missing",
			input:   "d",
			wantErr: ErrInvalidExpression,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrInvalidExpression,
		},
		{
			name:    "zero count",
			input:   "0d6",
			wantErr: ErrInvalidExpression,
		},
		{
			name:    "zero sides",
			input:   "2d0",
			wantErr: ErrInvalidExpression,
		},
		{
			name:    "too many dice",
			input:   "200d6",
			wantErr: ErrOutOfRange,
		},
		{
			name:    "too many sides",
			input:   "1d10000",
			wantErr: ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// Text after a valid expression does not fail the parse. This pins the
// policy that the matched prefix wins.
func TestParseTrailingText(t *testing.T) {
	got, err := Parse("2d6+1 for initiative")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := Expression{Count: 2, Sides: 6, Modifier: 1}
	if got != want {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseWithLimits(t *testing.T) {
	limits := Limits{MaxCount: 2, MaxSides: 6}

	if _, err := ParseWithLimits("2d6", limits); err != nil {
		t.Errorf("ParseWithLimits(2d6) error = %v", err)
	}
	if _, err := ParseWithLimits("3d6", limits); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ParseWithLimits(3d6) error = %v, want ErrOutOfRange", err)
	}
	if _, err := ParseWithLimits("1d8", limits); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ParseWithLimits(1d8) error = %v, want ErrOutOfRange", err)
	}
}

// Both the REST endpoint and the relay surface the same player-facing
// message for a given parse failure.
func TestUserMessage(t *testing.T) {
	_, rangeErr := Parse("200d6")
	if got := UserMessage(rangeErr); got != "Too many dice for the table, keep it reasonable" {
		t.Errorf("UserMessage(range) = %q", got)
	}

	_, parseErr := Parse("hello")
	if got := UserMessage(parseErr); got != "Invalid format. Try /roll 1d20+3" {
		t.Errorf("UserMessage(parse) = %q", got)
	}
}

func TestRollDeterministic(t *testing.T) {
	expr := Expression{Count: 2, Sides: 10, Modifier: 2}

	draws := []float64{0.1, 0.9}
	i := 0
	source := func() float64 {
		v := draws[i]
		i++
		return v
	}

	result := Roll(expr, source)

	wantRolls := []int{2, 10}
	if len(result.Rolls) != len(wantRolls) {
		t.Fatalf("got %d rolls, want %d", len(result.Rolls), len(wantRolls))
	}
	for j, want := range wantRolls {
		if result.Rolls[j] != want {
			t.Errorf("Rolls[%d] = %d, want %d", j, result.Rolls[j], want)
		}
	}
	if result.Total != 14 {
		t.Errorf("Total = %d, want 14", result.Total)
	}
	if result.Modifier != 2 {
		t.Errorf("Modifier = %d, want 2", result.Modifier)
	}
	if i != expr.Count {
		t.Errorf("consumed %d draws, want %d", i, expr.Count)
	}
}

func TestRollBounds(t *testing.T) {
	expr := Expression{Count: 10, Sides: 6, Modifier: -2}
	source := NewSource(42)

	for trial := 0; trial < 100; trial++ {
		result := Roll(expr, source)

		if len(result.Rolls) != expr.Count {
			t.Fatalf("got %d rolls, want %d", len(result.Rolls), expr.Count)
		}
		sum := 0
		for _, v := range result.Rolls {
			if v < 1 || v > expr.Sides {
				t.Fatalf("roll %d outside [1, %d]", v, expr.Sides)
			}
			sum += v
		}
		if result.Total != sum+expr.Modifier {
			t.Fatalf("Total = %d, want %d", result.Total, sum+expr.Modifier)
		}
	}
}

func TestRollEdgeDraws(t *testing.T) {
	expr := Expression{Count: 1, Sides: 6}

	low := Roll(expr, func() float64 { return 0 })
	if low.Rolls[0] != 1 {
		t.Errorf("draw 0.0 mapped to %d, want 1", low.Rolls[0])
	}

	high := Roll(expr, func() float64 { return 0.9999999 })
	if high.Rolls[0] != 6 {
		t.Errorf("draw just under 1.0 mapped to %d, want 6", high.Rolls[0])
	}
}

func TestRollDetail(t *testing.T) {
	expr := Expression{Count: 2, Sides: 6, Modifier: 3}
	draws := []float64{0.5, 0.0}
	i := 0
	result := Roll(expr, func() float64 { v := draws[i]; i++; return v })

	if result.Detail != "4 + 1 +3 = 8" {
		t.Errorf("Detail = %q", result.Detail)
	}

	noMod := Roll(Expression{Count: 1, Sides: 6}, func() float64 { return 0.5 })
	if noMod.Detail != "4 = 4" {
		t.Errorf("Detail = %q", noMod.Detail)
	}
}
