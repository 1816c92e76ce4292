package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHumanize(t *testing.T) {
	tests := []struct {
		name   string
		amount *big.Int
		want   string
	}{
		{"WholeUnits", big.NewInt(1_500_000_000_000), "1500"},
		{"Fraction", big.NewInt(3_150_000_000), "3.15"},
		{"OneSubunit", big.NewInt(1), "0.000000001"},
		{"Zero", big.NewInt(0), "0"},
		{"Nil", nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Humanize(tt.amount))
		})
	}
}

func TestFromUnits(t *testing.T) {
	assert.Equal(t, "2000000000000", FromUnits(decimal.NewFromInt(2000)).String())
	assert.Equal(t, "1250000000", FromUnits(decimal.RequireFromString("1.25")).String())
	assert.Equal(t, 0, FromUnits(decimal.RequireFromString("0.0000000001")).Sign())
}
