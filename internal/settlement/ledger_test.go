package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reseller_hub/internal/models"
)

type fakeStore struct {
	mu    sync.Mutex
	err   error
	calls []bool
	paid  map[string]bool

	// block, when set, is closed by the test to let SetPaid return.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeStore) SetPaid(ctx context.Context, orderID string, paid bool) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, paid)
	if f.err != nil {
		return f.err
	}
	if f.paid == nil {
		f.paid = make(map[string]bool)
	}
	f.paid[orderID] = paid
	return nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeGuard struct {
	deny     bool
	err      error
	acquired []string
	released []string
}

func (g *fakeGuard) Acquire(ctx context.Context, orderID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.deny {
		return false, nil
	}
	g.acquired = append(g.acquired, orderID)
	return true, nil
}

func (g *fakeGuard) Release(ctx context.Context, orderID string) error {
	g.released = append(g.released, orderID)
	return nil
}

var ledgerNow = time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)

func scenarioOrders() []models.Order {
	boundary := WeekStart(ledgerNow)
	return []models.Order{
		delivered("A", boundary, 1000, 600, 100, true),
		delivered("B", boundary.AddDate(0, 0, -1), 400, 200, 50, false),
	}
}

func TestLedgerTogglePaid(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(scenarioOrders(), ledgerNow, store)

	s, err := l.TogglePaid(context.Background(), "B")
	if err != nil {
		t.Fatalf("TogglePaid: %v", err)
	}
	if !s.PendingCommission.IsZero() {
		t.Errorf("PendingCommission = %s, want 0", s.PendingCommission)
	}
	if !s.RealizedProfit.Equal(dec(300 + 150)) {
		t.Errorf("RealizedProfit = %s, want 450", s.RealizedProfit)
	}
	if !s.WeeklyProfit.Equal(dec(300)) {
		t.Errorf("WeeklyProfit = %s, want 300", s.WeeklyProfit)
	}
	if len(s.PastDue) != 0 {
		t.Errorf("paid order left in PastDue: %v", ids(s.PastDue))
	}
	if !store.paid["B"] {
		t.Errorf("store not updated")
	}
	if o, _ := l.Order("B"); !o.IsPaid {
		t.Errorf("ledger order not marked paid")
	}
}

func TestLedgerToggleTwiceRestoresSummary(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(scenarioOrders(), ledgerNow, store)
	before := l.Summary()

	for _, id := range []string{"A", "A", "B", "B"} {
		if _, err := l.TogglePaid(context.Background(), id); err != nil {
			t.Fatalf("TogglePaid(%s): %v", id, err)
		}
	}
	after := l.Summary()

	if !after.WeeklyProfit.Equal(before.WeeklyProfit) ||
		!after.RealizedProfit.Equal(before.RealizedProfit) ||
		!after.PendingCommission.Equal(before.PendingCommission) {
		t.Errorf("double toggle changed aggregates: before %+v after %+v", before, after)
	}
	if len(after.PastDue) != len(before.PastDue) || len(after.CurrentWeek) != len(before.CurrentWeek) {
		t.Errorf("double toggle changed buckets")
	}
	if store.callCount() != 4 {
		t.Errorf("store calls = %d, want 4", store.callCount())
	}
}

func TestLedgerToggleRollsBackOnFailure(t *testing.T) {
	boom := errors.New("connection reset")
	store := &fakeStore{err: boom}
	l := NewLedger(scenarioOrders(), ledgerNow, store)
	before := l.Summary()

	s, err := l.TogglePaid(context.Background(), "A")
	var te *ToggleError
	if !errors.As(err, &te) {
		t.Fatalf("expected *ToggleError, got %v", err)
	}
	if te.OrderID != "A" || te.Paid {
		t.Errorf("ToggleError = %+v", te)
	}
	if !errors.Is(err, boom) {
		t.Errorf("ToggleError does not wrap cause")
	}
	if o, _ := l.Order("A"); !o.IsPaid {
		t.Errorf("order A not restored to paid")
	}
	if !s.RealizedProfit.Equal(before.RealizedProfit) || !s.PendingCommission.Equal(before.PendingCommission) {
		t.Errorf("summary after failed toggle differs: %+v", s)
	}

	// The pending flag is cleared so a retry is allowed.
	store.err = nil
	if _, err := l.TogglePaid(context.Background(), "A"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestLedgerToggleUnknownOrder(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(scenarioOrders(), ledgerNow, store)

	if _, err := l.TogglePaid(context.Background(), "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if store.callCount() != 0 {
		t.Errorf("store written for unknown order")
	}
}

func TestLedgerRejectsToggleWhileWritePending(t *testing.T) {
	store := &fakeStore{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	l := NewLedger(scenarioOrders(), ledgerNow, store)

	done := make(chan error, 1)
	go func() {
		_, err := l.TogglePaid(context.Background(), "B")
		done <- err
	}()
	<-store.entered

	if _, err := l.TogglePaid(context.Background(), "B"); !errors.Is(err, ErrToggleInFlight) {
		t.Errorf("second toggle: expected ErrToggleInFlight, got %v", err)
	}

	// A different order is not blocked by B's outstanding write.
	store.entered = nil
	other := make(chan error, 1)
	go func() {
		_, err := l.TogglePaid(context.Background(), "A")
		other <- err
	}()

	close(store.block)
	if err := <-done; err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if err := <-other; err != nil {
		t.Fatalf("toggle of other order: %v", err)
	}
	if store.callCount() != 2 {
		t.Errorf("store calls = %d, want 2", store.callCount())
	}
}

func TestLedgerGuard(t *testing.T) {
	t.Run("acquired and released", func(t *testing.T) {
		g := &fakeGuard{}
		l := NewLedger(scenarioOrders(), ledgerNow, &fakeStore{}, WithGuard(g))
		if _, err := l.TogglePaid(context.Background(), "A"); err != nil {
			t.Fatalf("TogglePaid: %v", err)
		}
		if len(g.acquired) != 1 || len(g.released) != 1 {
			t.Errorf("acquired=%v released=%v", g.acquired, g.released)
		}
	})

	t.Run("held elsewhere", func(t *testing.T) {
		store := &fakeStore{}
		l := NewLedger(scenarioOrders(), ledgerNow, store, WithGuard(&fakeGuard{deny: true}))
		if _, err := l.TogglePaid(context.Background(), "A"); !errors.Is(err, ErrToggleInFlight) {
			t.Fatalf("expected ErrToggleInFlight, got %v", err)
		}
		if store.callCount() != 0 {
			t.Errorf("store written while guard held")
		}
		if o, _ := l.Order("A"); !o.IsPaid {
			t.Errorf("order changed while guard held")
		}
	})

	t.Run("guard failure", func(t *testing.T) {
		store := &fakeStore{}
		boom := errors.New("redis down")
		l := NewLedger(scenarioOrders(), ledgerNow, store, WithGuard(&fakeGuard{err: boom}))
		if _, err := l.TogglePaid(context.Background(), "A"); !errors.Is(err, boom) {
			t.Fatalf("expected guard error, got %v", err)
		}
		if store.callCount() != 0 {
			t.Errorf("store written after guard failure")
		}
	})
}

func TestLedgerWeekStartFixedAtLoad(t *testing.T) {
	l := NewLedger(scenarioOrders(), ledgerNow, &fakeStore{})
	want := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	if !l.WeekStart().Equal(want) {
		t.Errorf("WeekStart = %s, want %s", l.WeekStart(), want)
	}
	if !l.Summary().WeekStart.Equal(want) {
		t.Errorf("Summary.WeekStart differs from ledger boundary")
	}
}
