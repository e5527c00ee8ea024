package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taldoflemis/usersnack/cucina"
	"github.com/taldoflemis/usersnack/ordine"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Session is one customer's detail view: the pizza being looked at, the
// extras catalog fetched alongside it, the selection in progress, and the
// most recent quote. The session is the exclusive owner of its Selection.
type Session struct {
	ID string

	mu            sync.Mutex
	pizza         cucina.Pizza
	extras        []cucina.Extra
	catalog       map[int]cucina.Extra
	sel           *ordine.Selection
	quote         *ordine.Quote
	pending       bool
	lastIssuedRev uint64
	lastSeen      time.Time
}

// SessionView is a consistent read of the session for rendering.
type SessionView struct {
	Pizza    cucina.Pizza
	Extras   []cucina.Extra
	Snapshot ordine.Snapshot
	Quote    *ordine.Quote
	Pending  bool
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var quote *ordine.Quote
	if s.quote != nil {
		q := *s.quote
		quote = &q
	}

	return SessionView{
		Pizza:    s.pizza,
		Extras:   s.extras,
		Snapshot: s.sel.Snapshot(),
		Quote:    quote,
		Pending:  s.pending,
	}
}

func (s *Session) IncQuantity() ordine.Snapshot {
	return s.sel.IncQuantity()
}

func (s *Session) DecQuantity() ordine.Snapshot {
	return s.sel.DecQuantity()
}

func (s *Session) ToggleExtra(extraID int) ordine.Snapshot {
	return s.sel.ToggleExtra(extraID)
}

// SessionStore keeps detail-view sessions in memory, evicting the ones the
// customer walked away from.
type SessionStore struct {
	mu       sync.Mutex
	byID     map[string]*Session
	pricer   *ordine.Pricer
	ttl      time.Duration
	quoteDur metric.Float64Histogram
	quoteCnt metric.Int64Counter
}

func NewSessionStore(pricer *ordine.Pricer, ttl time.Duration) (*SessionStore, error) {
	quoteDur, err := meter.Float64Histogram(
		"banco.quote.duration",
		metric.WithDescription("Time spent computing a price quote"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	quoteCnt, err := meter.Int64Counter(
		"banco.quote.count",
		metric.WithDescription("Number of price quotes computed, by source and staleness"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return nil, err
	}

	return &SessionStore{
		byID:     make(map[string]*Session),
		pricer:   pricer,
		ttl:      ttl,
		quoteDur: quoteDur,
		quoteCnt: quoteCnt,
	}, nil
}

// Create opens a session for a pizza: quantity one, no extras, first quote
// already on its way.
func (st *SessionStore) Create(ctx context.Context, pizza cucina.Pizza, extras []cucina.Extra) *Session {
	catalog := make(map[int]cucina.Extra, len(extras))
	for _, extra := range extras {
		catalog[extra.ID] = extra
	}

	sess := &Session{
		ID:       uuid.New().String(),
		pizza:    pizza,
		extras:   extras,
		catalog:  catalog,
		sel:      ordine.NewSelection(pizza),
		lastSeen: time.Now(),
	}

	st.mu.Lock()
	st.byID[sess.ID] = sess
	st.mu.Unlock()

	st.Recalculate(ctx, sess, sess.sel.Snapshot())

	return sess
}

func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.byID[id]
	if !ok {
		return nil, false
	}

	sess.mu.Lock()
	sess.lastSeen = time.Now()
	sess.mu.Unlock()

	return sess, true
}

func (st *SessionStore) Drop(id string) {
	st.mu.Lock()
	delete(st.byID, id)
	st.mu.Unlock()
}

// Recalculate issues a price computation for the given snapshot. Results
// for a revision that is no longer current are discarded, so responses
// arriving out of order cannot overwrite a newer quote (last-issued-wins).
func (st *SessionStore) Recalculate(ctx context.Context, sess *Session, snap ordine.Snapshot) {
	sess.mu.Lock()
	if sess.lastIssuedRev >= snap.Rev {
		// The mutation was a no-op, nothing new to price.
		sess.mu.Unlock()
		return
	}
	sess.lastIssuedRev = snap.Rev
	sess.pending = true
	pizza := sess.pizza
	catalog := sess.catalog
	sess.mu.Unlock()

	// The computation outlives the HTTP request that triggered it.
	ctx = context.WithoutCancel(ctx)

	go func() {
		start := time.Now()
		quote := st.pricer.Quote(ctx, pizza, catalog, snap)
		st.quoteDur.Record(ctx, time.Since(start).Seconds())

		sess.mu.Lock()
		defer sess.mu.Unlock()

		if snap.Rev != sess.sel.Rev() {
			st.quoteCnt.Add(ctx, 1, metric.WithAttributes(
				attribute.String("source", string(quote.Source)),
				attribute.Bool("stale", true),
			))
			slog.DebugContext(ctx, "discarding stale quote",
				slog.String("session-id", sess.ID),
				slog.Uint64("quote-rev", snap.Rev),
				slog.Uint64("current-rev", sess.sel.Rev()))
			return
		}

		sess.quote = &quote
		sess.pending = false

		st.quoteCnt.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", string(quote.Source)),
			attribute.Bool("stale", false),
		))
	}()
}

// StartJanitor evicts sessions idle for longer than the TTL.
func (st *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.evictExpired(ctx)
			}
		}
	}()
}

func (st *SessionStore) evictExpired(ctx context.Context) {
	deadline := time.Now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	for id, sess := range st.byID {
		sess.mu.Lock()
		expired := sess.lastSeen.Before(deadline)
		sess.mu.Unlock()

		if expired {
			delete(st.byID, id)
			slog.DebugContext(ctx, "evicted idle selection session", slog.String("session-id", id))
		}
	}
}
