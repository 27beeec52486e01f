package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRoundPrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"19.99", "19.99"},
		{"19.995", "20"},
		{"19.994", "19.99"},
		{"0.005", "0.01"},
		{"10", "10"},
	}
	for _, c := range cases {
		got := RoundPrice(decimal.RequireFromString(c.in))
		require.True(t, decimal.RequireFromString(c.want).Equal(got), "round %s: got %s", c.in, got)
	}
}

func TestLineTotal(t *testing.T) {
	total := LineTotal(decimal.RequireFromString("19.99"), 2)
	require.Equal(t, "39.98", total.StringFixed(2))

	total = LineTotal(decimal.RequireFromString("0.335"), 3)
	require.Equal(t, "1.02", total.StringFixed(2))
}

func TestOrderCalculateTotal(t *testing.T) {
	order := Order{
		OrderItems: []OrderItem{
			{TotalPrice: decimal.RequireFromString("39.98")},
			{TotalPrice: decimal.RequireFromString("5.01")},
		},
	}
	require.Equal(t, "44.99", order.CalculateTotal().StringFixed(2))
}
