// Package ordine implements the detail-view ordering flow: the selection
// the customer is building, price calculation with server reconciliation
// and local fallback, and order submission.
package ordine

import (
	"sort"
	"sync"

	"github.com/taldoflemis/usersnack/cucina"
)

// Selection holds the chosen pizza, the set of selected extras and the
// quantity. It is owned by a single detail view but mutated from concurrent
// HTTP events, hence the mutex. Every effective mutation bumps the revision
// so in-flight price calculations can be recognized as stale.
type Selection struct {
	mu       sync.Mutex
	pizza    cucina.Pizza
	extras   map[int]struct{}
	quantity int
	rev      uint64
}

// Snapshot is an immutable copy of the selection at one revision.
type Snapshot struct {
	PizzaID  int
	ExtraIDs []int
	Quantity int
	Rev      uint64
}

// NewSelection starts a fresh selection for a pizza: quantity one, no
// extras. Navigating to a different pizza means a new Selection.
func NewSelection(pizza cucina.Pizza) *Selection {
	return &Selection{
		pizza:    pizza,
		extras:   make(map[int]struct{}),
		quantity: 1,
		rev:      1,
	}
}

func (s *Selection) Pizza() cucina.Pizza {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pizza
}

// IncQuantity has no upper bound.
func (s *Selection) IncQuantity() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quantity++
	s.rev++
	return s.snapshotLocked()
}

// DecQuantity clamps at one: decrementing below that is a no-op and does
// not bump the revision.
func (s *Selection) DecQuantity() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quantity > 1 {
		s.quantity--
		s.rev++
	}
	return s.snapshotLocked()
}

// ToggleExtra adds the extra when absent and removes it when present.
// Toggling twice restores the previous state.
func (s *Selection) ToggleExtra(extraID int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.extras[extraID]; ok {
		delete(s.extras, extraID)
	} else {
		s.extras[extraID] = struct{}{}
	}
	s.rev++
	return s.snapshotLocked()
}

func (s *Selection) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Rev is the current revision; results computed for an older revision must
// be discarded.
func (s *Selection) Rev() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *Selection) snapshotLocked() Snapshot {
	extraIDs := make([]int, 0, len(s.extras))
	for id := range s.extras {
		extraIDs = append(extraIDs, id)
	}
	sort.Ints(extraIDs)

	return Snapshot{
		PizzaID:  s.pizza.ID,
		ExtraIDs: extraIDs,
		Quantity: s.quantity,
		Rev:      s.rev,
	}
}
