package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountsViolations(t *testing.T) {
	tests := []struct {
		name    string
		amounts Amounts
		want    []string
	}{
		{
			name:    "valid mix",
			amounts: NewAmounts(50, 0, 0, 0, 50, 0),
		},
		{
			name:    "single dye at the upper bound",
			amounts: Amounts{White: 100},
		},
		{
			name:    "empty",
			amounts: Amounts{},
			want:    []string{"Total dye amounts must sum between 1% and 100%"},
		},
		{
			name:    "total too high",
			amounts: Amounts{Red: 60, Blue: 60},
			want:    []string{"Total dye amounts must sum between 1% and 100%"},
		},
		{
			name:    "negative and oversized amounts",
			amounts: Amounts{Red: -1, Green: 101},
			want: []string{
				"Red color must be a number between 0 and 100",
				"Green color must be a number between 0 and 100",
			},
		},
		{
			name:    "unknown dye",
			amounts: Amounts{Dye(9): 10},
			want: []string{
				"Dye(9) is not a known dye",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.amounts.Violations()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) == 0, tt.amounts.Valid())
		})
	}
}

func TestAmountsSparse(t *testing.T) {
	a := NewAmounts(10, 0, 0, 5, 0, 0)
	sparse := a.Sparse()

	assert.Equal(t, Amounts{Red: 10, Yellow: 5}, sparse)
	assert.Equal(t, map[string]int{"red": 10, "yellow": 5}, sparse.ByKey())

	sparse[Red] = 99
	assert.Equal(t, 10, a[Red], "Sparse must copy")
}

func TestParseDye(t *testing.T) {
	d, ok := ParseDye("yElLoW")
	require.True(t, ok)
	assert.Equal(t, Yellow, d)

	_, ok = ParseDye("magenta")
	assert.False(t, ok)
}
