package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinor(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected int64
	}{
		{"whole amount", "1500", 150000},
		{"fractional amount", "19.99", 1999},
		{"rounds half up", "0.005", 1},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToMinor(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestFromMinor(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1500").Equal(FromMinor(150000)))
	assert.True(t, decimal.RequireFromString("19.99").Equal(FromMinor(1999)))
}

func TestLineTotal(t *testing.T) {
	total := LineTotal(decimal.RequireFromString("12.50"), 3)

	assert.True(t, decimal.RequireFromString("37.5").Equal(total))
}
