package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/usersnack/cucina"
	"github.com/taldoflemis/usersnack/ordine"
)

// gatedPriceService blocks each price calculation until the gate for its
// quantity is released, so tests control the order responses arrive in.
type gatedPriceService struct {
	mu    sync.Mutex
	gates map[int]chan struct{}
	calls int
}

func newGatedPriceService() *gatedPriceService {
	return &gatedPriceService{gates: make(map[int]chan struct{})}
}

func (g *gatedPriceService) gate(quantity int) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.gates[quantity]
	if !ok {
		ch = make(chan struct{})
		g.gates[quantity] = ch
	}
	return ch
}

func (g *gatedPriceService) release(quantity int) {
	close(g.gate(quantity))
}

func (g *gatedPriceService) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *gatedPriceService) CalculatePrice(
	ctx context.Context,
	pizzaID int,
	extras []int,
	quantity int,
) (*cucina.CalculatedPrice, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	<-g.gate(quantity)

	return &cucina.CalculatedPrice{
		PizzaID:    pizzaID,
		Quantity:   quantity,
		ExtraIDs:   extras,
		TotalPrice: decimal.NewFromInt(int64(quantity)).Mul(decimal.RequireFromString("11.90")),
	}, nil
}

func testPizza() cucina.Pizza {
	return cucina.Pizza{
		ID:        7,
		Name:      "Margherita",
		BasePrice: decimal.RequireFromString("11.90"),
	}
}

func TestRecalculateLastIssuedWins(t *testing.T) {
	// Arrange
	svc := newGatedPriceService()
	store, err := NewSessionStore(ordine.NewPricer(svc), time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	sess := store.Create(ctx, testPizza(), nil)

	// The quote for quantity one is still in flight when the customer
	// bumps the quantity.
	snap := sess.IncQuantity()
	store.Recalculate(ctx, sess, snap)

	// Act: the newer response lands first, the older one afterwards.
	svc.release(2)
	require.Eventually(t, func() bool {
		view := sess.View()
		return !view.Pending && view.Quote != nil && view.Quote.Quantity == 2
	}, time.Second, 5*time.Millisecond)

	svc.release(1)

	// Assert: the stale quantity-one result never overwrites the newer quote.
	time.Sleep(50 * time.Millisecond)
	view := sess.View()
	assert.NotNil(t, view.Quote)
	assert.Equal(t, 2, view.Quote.Quantity)
	assert.False(t, view.Pending)
}

func TestRecalculateSkipsNoOpMutation(t *testing.T) {
	// Arrange
	svc := newGatedPriceService()
	store, err := NewSessionStore(ordine.NewPricer(svc), time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	sess := store.Create(ctx, testPizza(), nil)

	svc.release(1)
	require.Eventually(t, func() bool {
		return !sess.View().Pending
	}, time.Second, 5*time.Millisecond)

	// Act: decrementing at quantity one does not change the selection.
	snap := sess.DecQuantity()
	store.Recalculate(ctx, sess, snap)

	// Assert: no second price calculation is issued.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, svc.callCount())
}

func TestEvictExpiredDropsIdleSessions(t *testing.T) {
	// Arrange
	svc := newGatedPriceService()
	svc.release(1)
	store, err := NewSessionStore(ordine.NewPricer(svc), time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	idle := store.Create(ctx, testPizza(), nil)
	active := store.Create(ctx, testPizza(), nil)

	idle.mu.Lock()
	idle.lastSeen = time.Now().Add(-2 * time.Minute)
	idle.mu.Unlock()

	// Act
	store.evictExpired(ctx)

	// Assert
	_, ok := store.Get(idle.ID)
	assert.False(t, ok)
	_, ok = store.Get(active.ID)
	assert.True(t, ok)
}
