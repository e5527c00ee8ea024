package ordine

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/taldoflemis/usersnack/cucina"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ordine")

// PriceService is the remote price-calculation endpoint.
type PriceService interface {
	CalculatePrice(ctx context.Context, pizzaID int, extras []int, quantity int) (*cucina.CalculatedPrice, error)
}

type PriceSource string

const (
	PriceSourceRemote   PriceSource = "remote"
	PriceSourceFallback PriceSource = "fallback"
)

// Quote is a calculated price tagged with where it came from.
type Quote struct {
	cucina.CalculatedPrice
	Source PriceSource
}

// Pricer produces a total price for a selection. The remote service is the
// source of truth (it may apply discounts the client does not know about);
// when it is unreachable the pricer computes locally so a price is always
// available.
type Pricer struct {
	svc PriceService
}

func NewPricer(svc PriceService) *Pricer {
	return &Pricer{svc: svc}
}

// Quote never fails: any remote error is absorbed by the local fallback.
func (p *Pricer) Quote(ctx context.Context, pizza cucina.Pizza, catalog map[int]cucina.Extra, snap Snapshot) Quote {
	ctx, span := tracer.Start(ctx, "Pricer.Quote", trace.WithAttributes(
		attribute.Int("pizza.id", pizza.ID),
		attribute.Int("selection.quantity", snap.Quantity),
		attribute.IntSlice("selection.extras", snap.ExtraIDs),
	))
	defer span.End()

	price, err := p.svc.CalculatePrice(ctx, pizza.ID, snap.ExtraIDs, snap.Quantity)
	if err == nil {
		return Quote{CalculatedPrice: *price, Source: PriceSourceRemote}
	}

	span.SetAttributes(attribute.Bool("price.fallback", true))
	slog.WarnContext(ctx, "remote price calculation failed, falling back to local math",
		slog.Int("pizza-id", pizza.ID),
		slog.Any("err", err))

	return Quote{
		CalculatedPrice: fallbackPrice(pizza, catalog, snap),
		Source:          PriceSourceFallback,
	}
}

// fallbackPrice computes base_price*quantity + sum(extra.price*quantity).
// Extras referenced by the selection but absent from the catalog contribute
// zero, silently.
func fallbackPrice(pizza cucina.Pizza, catalog map[int]cucina.Extra, snap Snapshot) cucina.CalculatedPrice {
	quantity := decimal.NewFromInt(int64(snap.Quantity))
	total := pizza.BasePrice.Mul(quantity)

	for _, extraID := range snap.ExtraIDs {
		extra, ok := catalog[extraID]
		if !ok {
			continue
		}
		total = total.Add(extra.Price.Mul(quantity))
	}

	return cucina.CalculatedPrice{
		PizzaID:    pizza.ID,
		PizzaName:  pizza.Name,
		BasePrice:  pizza.BasePrice,
		Quantity:   snap.Quantity,
		ExtraIDs:   snap.ExtraIDs,
		TotalPrice: total,
	}
}
