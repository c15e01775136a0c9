// Package settlement derives weekly payout figures from delivered orders and
// classifies them into payable buckets.
//
// The settlement week runs Monday to Sunday. Its start is computed once per
// summary and every order is bucketed against that single value.
package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"reseller_hub/internal/models"
)

// WeekStart returns midnight of the Monday on or before now's calendar day,
// in now's location.
func WeekStart(now time.Time) time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	// Monday=0 ... Sunday=6
	sinceMonday := (int(today.Weekday()) + 6) % 7
	return today.AddDate(0, 0, -sinceMonday)
}

// Profit is the business's line profit after paying the reseller.
func Profit(o *models.Order) decimal.Decimal {
	return o.SellPriceAtSale.Sub(o.BuyPriceAtSale).Sub(o.CommissionAmount)
}

// Summary is the derived settlement state of one order set.
type Summary struct {
	WeekStart time.Time

	// WeeklyProfit is the profit of paid orders dated in the current week.
	WeeklyProfit decimal.Decimal
	// RealizedProfit is the profit of every paid order.
	RealizedProfit decimal.Decimal
	// PendingCommission is the commission still owed on unpaid orders.
	PendingCommission decimal.Decimal

	// PastDue holds unpaid orders dated before WeekStart.
	PastDue []models.Order
	// CurrentWeek holds orders dated on or after WeekStart, paid or not.
	CurrentWeek []models.Order
	// Orders is every delivered order considered, in input order.
	Orders []models.Order
}

// Summarize computes the summary with the week boundary taken from now.
func Summarize(orders []models.Order, now time.Time) Summary {
	return Compute(orders, WeekStart(now))
}

// Compute aggregates delivered orders against a fixed week boundary in a
// single pass. Orders in any other delivery status are skipped.
func Compute(orders []models.Order, weekStart time.Time) Summary {
	s := Summary{
		WeekStart:         weekStart,
		WeeklyProfit:      decimal.Zero,
		RealizedProfit:    decimal.Zero,
		PendingCommission: decimal.Zero,
		PastDue:           []models.Order{},
		CurrentWeek:       []models.Order{},
		Orders:            []models.Order{},
	}
	boundary := civilDay(weekStart)

	for i := range orders {
		o := &orders[i]
		if o.DeliveryStatus != models.StatusDelivered {
			continue
		}
		s.Orders = append(s.Orders, *o)

		inWeek := !civilDay(o.Date).Before(boundary)
		if o.IsPaid {
			profit := Profit(o)
			s.RealizedProfit = s.RealizedProfit.Add(profit)
			if inWeek {
				s.WeeklyProfit = s.WeeklyProfit.Add(profit)
			}
		} else {
			s.PendingCommission = s.PendingCommission.Add(o.CommissionAmount)
		}

		switch {
		case inWeek:
			s.CurrentWeek = append(s.CurrentWeek, *o)
		case !o.IsPaid:
			s.PastDue = append(s.PastDue, *o)
		}
	}
	return s
}

// civilDay drops the clock and zone of t, keeping the calendar day it shows
// in its own location. Order dates come back from the store at UTC midnight
// while the boundary lives in the business time zone.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
