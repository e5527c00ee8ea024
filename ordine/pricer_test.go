package ordine

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/usersnack/cucina"
)

type fakePriceService struct {
	price *cucina.CalculatedPrice
	err   error
	calls int
}

func (f *fakePriceService) CalculatePrice(ctx context.Context, pizzaID int, extras []int, quantity int) (*cucina.CalculatedPrice, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.price, nil
}

func extraCatalog() map[int]cucina.Extra {
	return map[int]cucina.Extra{
		1: {ID: 1, Name: "Extra Cheese", Price: decimal.RequireFromString("2.50")},
		2: {ID: 2, Name: "Mushrooms", Price: decimal.RequireFromString("1.80")},
	}
}

func TestQuotePrefersRemotePrice(t *testing.T) {
	// Arrange: the service applies a discount the client cannot know about.
	remote := &cucina.CalculatedPrice{
		PizzaID:    7,
		PizzaName:  "Margherita",
		BasePrice:  decimal.RequireFromString("10.00"),
		Quantity:   2,
		ExtraIDs:   []int{1},
		TotalPrice: decimal.RequireFromString("22.00"),
	}
	pricer := NewPricer(&fakePriceService{price: remote})

	sel := NewSelection(testPizza())
	sel.IncQuantity()
	snap := sel.ToggleExtra(1)

	// Act
	quote := pricer.Quote(context.Background(), testPizza(), extraCatalog(), snap)

	// Assert
	assert.Equal(t, PriceSourceRemote, quote.Source)
	assert.True(t, quote.TotalPrice.Equal(decimal.RequireFromString("22.00")))
}

func TestQuoteFallsBackOnRemoteFailure(t *testing.T) {
	pricer := NewPricer(&fakePriceService{err: &cucina.NetworkError{Op: "CalculatePrice", Err: errors.New("connection refused")}})

	tests := []struct {
		name     string
		mutate   func(sel *Selection)
		expected string
	}{
		{
			name:     "base price only",
			mutate:   func(sel *Selection) {},
			expected: "10.00",
		},
		{
			name: "one extra at quantity two",
			mutate: func(sel *Selection) {
				sel.IncQuantity()
				sel.ToggleExtra(1)
			},
			// 10*2 + 2.50*2
			expected: "25.00",
		},
		{
			name: "unknown extra contributes zero",
			mutate: func(sel *Selection) {
				sel.ToggleExtra(999)
			},
			expected: "10.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			sel := NewSelection(testPizza())
			tt.mutate(sel)

			// Act
			quote := pricer.Quote(context.Background(), testPizza(), extraCatalog(), sel.Snapshot())

			// Assert
			assert.Equal(t, PriceSourceFallback, quote.Source)
			assert.True(t, quote.TotalPrice.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", quote.TotalPrice, tt.expected)
		})
	}
}

func TestFallbackPreservesPriceInvariant(t *testing.T) {
	// total must equal base*qty + sum(extra*qty) whichever path produced it
	pricer := NewPricer(&fakePriceService{err: errors.New("boom")})
	catalog := extraCatalog()

	sel := NewSelection(testPizza())
	sel.IncQuantity()
	sel.IncQuantity()
	sel.ToggleExtra(1)
	snap := sel.ToggleExtra(2)

	quote := pricer.Quote(context.Background(), testPizza(), catalog, snap)

	quantity := decimal.NewFromInt(int64(snap.Quantity))
	want := testPizza().BasePrice.Mul(quantity)
	for _, id := range snap.ExtraIDs {
		want = want.Add(catalog[id].Price.Mul(quantity))
	}

	require.True(t, quote.TotalPrice.Equal(want), "got %s, want %s", quote.TotalPrice, want)
	assert.Equal(t, snap.Quantity, quote.Quantity)
	assert.Equal(t, snap.ExtraIDs, quote.ExtraIDs)
}
