package settlement

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"reseller_hub/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func delivered(id string, date time.Time, sell, buy, commission int64, paid bool) models.Order {
	return models.Order{
		OrderID:          id,
		Date:             date,
		SellPriceAtSale:  dec(sell),
		BuyPriceAtSale:   dec(buy),
		CommissionAmount: dec(commission),
		DeliveryStatus:   models.StatusDelivered,
		IsPaid:           paid,
	}
}

func TestWeekStart(t *testing.T) {
	colombo := time.FixedZone("LKT", 5*3600+1800)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"monday is its own boundary", time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC), day(2024, 5, 6)},
		{"sunday goes back six days", time.Date(2024, 5, 12, 23, 59, 0, 0, time.UTC), day(2024, 5, 6)},
		{"wednesday", time.Date(2024, 5, 8, 0, 0, 1, 0, time.UTC), day(2024, 5, 6)},
		{"saturday", time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC), day(2024, 5, 6)},
		{"crosses month", time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC), day(2024, 5, 27)},
		{"crosses year", time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), day(2024, 12, 30)},
		{"local calendar day wins", time.Date(2024, 5, 13, 0, 15, 0, 0, colombo), time.Date(2024, 5, 13, 0, 0, 0, 0, colombo)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("WeekStart(%s) = %s, want %s", tt.now, got, tt.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("WeekStart(%s) is a %s", tt.now, got.Weekday())
			}
		})
	}
}

func TestWeekStartIsIdempotentWithinADay(t *testing.T) {
	base := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
	first := WeekStart(base)
	for h := 0; h < 24; h++ {
		now := base.Add(time.Duration(h)*time.Hour + 59*time.Minute)
		if got := WeekStart(now); !got.Equal(first) {
			t.Fatalf("WeekStart drifted at %s: %s != %s", now, got, first)
		}
		if got := WeekStart(WeekStart(now)); !got.Equal(first) {
			t.Fatalf("WeekStart not stable when applied to its own result")
		}
	}
}

func TestProfit(t *testing.T) {
	o := delivered("A", day(2024, 5, 6), 1000, 600, 100, true)
	if got := Profit(&o); !got.Equal(dec(300)) {
		t.Errorf("Profit = %s, want 300", got)
	}
}

func TestComputeScenario(t *testing.T) {
	boundary := day(2024, 5, 6)
	orderA := delivered("A", boundary, 1000, 600, 100, true)
	orderB := delivered("B", boundary.AddDate(0, 0, -1), 400, 200, 50, false)

	s := Compute([]models.Order{orderA, orderB}, boundary)

	if !s.RealizedProfit.Equal(dec(300)) {
		t.Errorf("RealizedProfit = %s, want 300", s.RealizedProfit)
	}
	if !s.WeeklyProfit.Equal(dec(300)) {
		t.Errorf("WeeklyProfit = %s, want 300", s.WeeklyProfit)
	}
	if !s.PendingCommission.Equal(dec(50)) {
		t.Errorf("PendingCommission = %s, want 50", s.PendingCommission)
	}
	if len(s.PastDue) != 1 || s.PastDue[0].OrderID != "B" {
		t.Errorf("PastDue = %v, want [B]", ids(s.PastDue))
	}
	if len(s.CurrentWeek) != 1 || s.CurrentWeek[0].OrderID != "A" {
		t.Errorf("CurrentWeek = %v, want [A]", ids(s.CurrentWeek))
	}
}

func TestComputeBuckets(t *testing.T) {
	boundary := day(2024, 5, 6)
	orders := []models.Order{
		delivered("paid-old", boundary.AddDate(0, 0, -3), 500, 300, 50, true),
		delivered("unpaid-old", boundary.AddDate(0, 0, -10), 500, 300, 70, false),
		delivered("paid-new", boundary.AddDate(0, 0, 2), 800, 500, 80, true),
		delivered("unpaid-new", boundary.AddDate(0, 0, 6), 900, 500, 90, false),
	}
	returned := delivered("returned", boundary, 900, 100, 10, true)
	returned.DeliveryStatus = models.StatusReturned
	orders = append(orders, returned)

	s := Compute(orders, boundary)

	if got := ids(s.PastDue); len(got) != 1 || got[0] != "unpaid-old" {
		t.Errorf("PastDue = %v", got)
	}
	if got := ids(s.CurrentWeek); len(got) != 2 || got[0] != "paid-new" || got[1] != "unpaid-new" {
		t.Errorf("CurrentWeek = %v", got)
	}
	if !s.RealizedProfit.Equal(dec(150 + 220)) {
		t.Errorf("RealizedProfit = %s", s.RealizedProfit)
	}
	if !s.WeeklyProfit.Equal(dec(220)) {
		t.Errorf("WeeklyProfit = %s", s.WeeklyProfit)
	}
	if !s.PendingCommission.Equal(dec(70 + 90)) {
		t.Errorf("PendingCommission = %s", s.PendingCommission)
	}
	if len(s.Orders) != 4 {
		t.Errorf("non-delivered orders must be skipped, got %d orders", len(s.Orders))
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, day(2024, 5, 6))
	if !s.RealizedProfit.IsZero() || !s.WeeklyProfit.IsZero() || !s.PendingCommission.IsZero() {
		t.Errorf("empty set must aggregate to zero: %+v", s)
	}
	if s.PastDue == nil || s.CurrentWeek == nil {
		t.Errorf("buckets should be empty, not nil")
	}
}

func TestComputeComparesCalendarDays(t *testing.T) {
	colombo := time.FixedZone("LKT", 5*3600+1800)
	boundary := time.Date(2024, 5, 6, 0, 0, 0, 0, colombo)
	// Stored dates come back at UTC midnight; 2024-05-06 00:00 UTC is an
	// earlier instant than the boundary yet the same calendar day.
	onBoundary := delivered("same-day", day(2024, 5, 6), 100, 50, 10, false)

	s := Compute([]models.Order{onBoundary}, boundary)
	if len(s.CurrentWeek) != 1 || len(s.PastDue) != 0 {
		t.Errorf("order on the boundary day must be current week: current=%v pastDue=%v", ids(s.CurrentWeek), ids(s.PastDue))
	}
}

func TestComputeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	boundary := day(2024, 5, 6)

	for round := 0; round < 200; round++ {
		n := rng.Intn(30)
		orders := make([]models.Order, n)
		for i := range orders {
			buy := rng.Int63n(1000)
			commission := rng.Int63n(200)
			sell := buy + commission + rng.Int63n(1000)
			date := boundary.AddDate(0, 0, rng.Intn(21)-14)
			orders[i] = delivered(string(rune('a'+i)), date, sell, buy, commission, rng.Intn(2) == 0)
		}

		s := Compute(orders, boundary)

		if s.WeeklyProfit.GreaterThan(s.RealizedProfit) {
			t.Fatalf("round %d: weekly %s > realized %s", round, s.WeeklyProfit, s.RealizedProfit)
		}

		realized, pending := decimal.Zero, decimal.Zero
		for i := range orders {
			o := &orders[i]
			toProfit, toPending := o.IsPaid, !o.IsPaid
			if toProfit == toPending {
				t.Fatalf("round %d: order %s contributes to both or neither", round, o.OrderID)
			}
			if toProfit {
				realized = realized.Add(Profit(o))
			} else {
				pending = pending.Add(o.CommissionAmount)
			}

			inPast, inCurrent := contains(s.PastDue, o.OrderID), contains(s.CurrentWeek, o.OrderID)
			if inPast && inCurrent {
				t.Fatalf("round %d: order %s in both display buckets", round, o.OrderID)
			}
		}
		if !realized.Equal(s.RealizedProfit) || !pending.Equal(s.PendingCommission) {
			t.Fatalf("round %d: totals mismatch", round)
		}
	}
}

func ids(orders []models.Order) []string {
	out := make([]string, len(orders))
	for i := range orders {
		out[i] = orders[i].OrderID
	}
	return out
}

func contains(orders []models.Order, id string) bool {
	for i := range orders {
		if orders[i].OrderID == id {
			return true
		}
	}
	return false
}
