package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/taldoflemis/usersnack/crosta/telemetry"
	"go.opentelemetry.io/otel/codes"
)

const subscriberBuffer = 16

// OrderPublisher fans confirmed orders out to live-feed subscribers.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, order ConfirmedOrder) error
	SubscribeOrders(ctx context.Context) (<-chan ConfirmedOrder, func(), error)
}

// GoChannelOrderPublisher is the in-process fan-out used when NATS is
// disabled (single-instance deployments, tests).
type GoChannelOrderPublisher struct {
	mu   sync.Mutex
	subs map[chan ConfirmedOrder]struct{}
}

var _ OrderPublisher = (*GoChannelOrderPublisher)(nil)

func NewGoChannelOrderPublisher() *GoChannelOrderPublisher {
	return &GoChannelOrderPublisher{
		subs: make(map[chan ConfirmedOrder]struct{}),
	}
}

// PublishOrder implements OrderPublisher.
func (g *GoChannelOrderPublisher) PublishOrder(ctx context.Context, order ConfirmedOrder) error {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPublisher.PublishOrder")
	defer span.End()

	slog.InfoContext(ctx, "publishing confirmed order", slog.String("event-id", order.EventID))

	g.mu.Lock()
	defer g.mu.Unlock()

	for sub := range g.subs {
		select {
		case sub <- order:
		default:
			// Slow subscribers miss events rather than block the order path.
		}
	}
	return nil
}

// SubscribeOrders implements OrderPublisher.
func (g *GoChannelOrderPublisher) SubscribeOrders(ctx context.Context) (<-chan ConfirmedOrder, func(), error) {
	ch := make(chan ConfirmedOrder, subscriberBuffer)

	g.mu.Lock()
	g.subs[ch] = struct{}{}
	g.mu.Unlock()

	unsubscribe := func() {
		g.mu.Lock()
		delete(g.subs, ch)
		g.mu.Unlock()
	}
	return ch, unsubscribe, nil
}

// NATSOrderPublisher fans confirmed orders out across gateway instances.
type NATSOrderPublisher struct {
	nc      *nats.Conn
	subject string
}

var _ OrderPublisher = (*NATSOrderPublisher)(nil)

func NewNATSOrderPublisher(nc *nats.Conn, subject string) *NATSOrderPublisher {
	return &NATSOrderPublisher{nc: nc, subject: subject}
}

// PublishOrder implements OrderPublisher.
func (n *NATSOrderPublisher) PublishOrder(ctx context.Context, order ConfirmedOrder) error {
	ctx, span := tracer.Start(ctx, "NATSOrderPublisher.PublishOrder")
	defer span.End()

	msg := &nats.Msg{
		Subject: n.subject,
		Header:  nats.Header{},
	}
	telemetry.InjectContextToNatsMsg(ctx, msg)

	data, err := json.Marshal(order)
	if err != nil {
		span.SetStatus(codes.Error, "failed to marshal confirmed order")
		span.RecordError(err)
		return err
	}
	msg.Data = data

	slog.InfoContext(ctx, "publishing confirmed order to NATS",
		slog.String("event-id", order.EventID),
		slog.String("subject", n.subject))

	return n.nc.PublishMsg(msg)
}

// SubscribeOrders implements OrderPublisher.
func (n *NATSOrderPublisher) SubscribeOrders(ctx context.Context) (<-chan ConfirmedOrder, func(), error) {
	ctx, span := tracer.Start(ctx, "NATSOrderPublisher.SubscribeOrders")
	defer span.End()

	ch := make(chan ConfirmedOrder, subscriberBuffer)

	sub, err := n.nc.Subscribe(n.subject, func(msg *nats.Msg) {
		msgCtx := telemetry.GetContextFromNatsMsg(ctx, msg)

		var order ConfirmedOrder
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			slog.ErrorContext(msgCtx, "failed to unmarshal confirmed order from NATS message", slog.Any("err", err))
			return
		}

		select {
		case ch <- order:
		default:
			slog.WarnContext(msgCtx, "dropping confirmed order for slow subscriber",
				slog.String("event-id", order.EventID))
		}
	})
	if err != nil {
		span.SetStatus(codes.Error, "failed to subscribe to NATS subject")
		span.RecordError(err)
		return nil, nil, err
	}

	unsubscribe := func() {
		if err := sub.Unsubscribe(); err != nil {
			slog.WarnContext(ctx, "failed to unsubscribe from NATS subject", slog.Any("err", err))
		}
	}
	return ch, unsubscribe, nil
}
