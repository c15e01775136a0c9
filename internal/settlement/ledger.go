package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"reseller_hub/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order is not part of this settlement")

	// ErrToggleInFlight is returned when a paid-state write for the same order
	// is still outstanding.
	ErrToggleInFlight = errors.New("a payment update for this order is already in progress")

	// ErrStaleState is returned by a PaidStore when the stored flag no longer
	// holds the value the ledger loaded.
	ErrStaleState = errors.New("payment state changed since it was loaded")
)

// PaidStore persists the paid flag of one order. The write must only apply
// while the stored flag is still !paid; otherwise it returns ErrStaleState.
type PaidStore interface {
	SetPaid(ctx context.Context, orderID string, paid bool) error
}

// Guard is a pending-write flag shared beyond this ledger, e.g. across
// requests or processes.
type Guard interface {
	Acquire(ctx context.Context, orderID string) (bool, error)
	Release(ctx context.Context, orderID string) error
}

// ToggleError reports a paid-state write that failed and was rolled back.
type ToggleError struct {
	OrderID string
	Paid    bool
	Err     error
}

func (e *ToggleError) Error() string {
	return fmt.Sprintf("settlement: mark order %s paid=%t failed, reverted: %v", e.OrderID, e.Paid, e.Err)
}

func (e *ToggleError) Unwrap() error {
	return e.Err
}

// Ledger is the view model of one payout screen: a loaded order set, its
// fixed week boundary, and the paid-state transitions applied to it.
type Ledger struct {
	mu        sync.Mutex
	weekStart time.Time
	orders    []models.Order
	index     map[string]int
	pending   map[string]bool

	store PaidStore
	guard Guard
}

type LedgerOption func(*Ledger)

// WithGuard adds a shared pending-write flag on top of the ledger's own.
func WithGuard(g Guard) LedgerOption {
	return func(l *Ledger) {
		l.guard = g
	}
}

// NewLedger copies orders and fixes the week boundary from now.
func NewLedger(orders []models.Order, now time.Time, store PaidStore, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		weekStart: WeekStart(now),
		orders:    make([]models.Order, len(orders)),
		index:     make(map[string]int, len(orders)),
		pending:   make(map[string]bool),
		store:     store,
	}
	copy(l.orders, orders)
	for i := range l.orders {
		l.index[l.orders[i].OrderID] = i
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) WeekStart() time.Time {
	return l.weekStart
}

func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Compute(l.orders, l.weekStart)
}

// Order returns a copy of the order as the ledger currently sees it.
func (l *Ledger) Order(orderID string) (models.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[orderID]
	if !ok {
		return models.Order{}, false
	}
	return l.orders[i], true
}

// TogglePaid flips the paid flag of one order and persists it. The flip is
// applied optimistically; if the write fails the prior value is restored
// before returning a *ToggleError, so the ledger always matches storage.
// A second toggle on an order whose write is outstanding is rejected with
// ErrToggleInFlight and writes nothing.
func (l *Ledger) TogglePaid(ctx context.Context, orderID string) (Summary, error) {
	l.mu.Lock()
	i, ok := l.index[orderID]
	if !ok {
		l.mu.Unlock()
		return Summary{}, ErrOrderNotFound
	}
	if l.pending[orderID] {
		l.mu.Unlock()
		return Summary{}, ErrToggleInFlight
	}
	l.pending[orderID] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.pending, orderID)
		l.mu.Unlock()
	}()

	if l.guard != nil {
		acquired, err := l.guard.Acquire(ctx, orderID)
		if err != nil {
			return Summary{}, fmt.Errorf("settlement: acquire pending write for %s: %w", orderID, err)
		}
		if !acquired {
			return Summary{}, ErrToggleInFlight
		}
		// The guard expires on its own if release fails.
		defer l.guard.Release(context.WithoutCancel(ctx), orderID)
	}

	l.mu.Lock()
	prior := l.orders[i].IsPaid
	l.orders[i].IsPaid = !prior
	l.mu.Unlock()

	if err := l.store.SetPaid(ctx, orderID, !prior); err != nil {
		l.mu.Lock()
		l.orders[i].IsPaid = prior
		l.mu.Unlock()
		return l.Summary(), &ToggleError{OrderID: orderID, Paid: !prior, Err: err}
	}

	return l.Summary(), nil
}
