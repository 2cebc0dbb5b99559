package mixer

import (
	"fmt"
	"strings"
)

// Dye is one of the six colour components the mixer accepts.
type Dye int

const (
	Red Dye = iota
	Black
	White
	Yellow
	Blue
	Green
)

// Palette lists every dye in canonical order.
var Palette = []Dye{Red, Black, White, Yellow, Blue, Green}

const (
	MinAmount = 0
	MaxAmount = 100
	MinTotal  = 1
	MaxTotal  = 100
)

func (d Dye) String() string {
	switch d {
	case Red:
		return "Red"
	case Black:
		return "Black"
	case White:
		return "White"
	case Yellow:
		return "Yellow"
	case Blue:
		return "Blue"
	case Green:
		return "Green"
	default:
		return fmt.Sprintf("Dye(%d)", int(d))
	}
}

// Key is the lower-case name used in JSON payloads.
func (d Dye) Key() string { return strings.ToLower(d.String()) }

func (d Dye) valid() bool { return d >= Red && d <= Green }

// ParseDye resolves a dye by name, ignoring case.
func ParseDye(name string) (Dye, bool) {
	for _, d := range Palette {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}

// Amounts maps dyes to integer percentages. Missing dyes count as zero.
type Amounts map[Dye]int

// NewAmounts builds an amount set in palette order.
func NewAmounts(red, black, white, yellow, blue, green int) Amounts {
	return Amounts{
		Red:    red,
		Black:  black,
		White:  white,
		Yellow: yellow,
		Blue:   blue,
		Green:  green,
	}
}

// Total sums every entry.
func (a Amounts) Total() int {
	total := 0
	for _, v := range a {
		total += v
	}
	return total
}

// Violations lists every constraint the amounts break: unknown dyes first,
// then out-of-range amounts in palette order, then the total.
func (a Amounts) Violations() []string {
	var out []string
	for d := range a {
		if !d.valid() {
			out = append(out, fmt.Sprintf("%s is not a known dye", d))
		}
	}
	for _, d := range Palette {
		if v := a[d]; v < MinAmount || v > MaxAmount {
			out = append(out, fmt.Sprintf("%s color must be a number between %d and %d", d, MinAmount, MaxAmount))
		}
	}
	if total := a.Total(); total < MinTotal || total > MaxTotal {
		out = append(out, fmt.Sprintf("Total dye amounts must sum between %d%% and %d%%", MinTotal, MaxTotal))
	}
	return out
}

// Valid reports whether the amounts can be submitted.
func (a Amounts) Valid() bool { return len(a.Violations()) == 0 }

// Sparse returns a copy without zero entries.
func (a Amounts) Sparse() Amounts {
	out := make(Amounts, len(a))
	for d, v := range a {
		if v != 0 {
			out[d] = v
		}
	}
	return out
}

// ByKey returns the amounts keyed by Dye.Key, in the shape used on the wire.
func (a Amounts) ByKey() map[string]int {
	out := make(map[string]int, len(a))
	for d, v := range a {
		out[d.Key()] = v
	}
	return out
}
