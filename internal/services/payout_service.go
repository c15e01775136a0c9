package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"reseller_hub/internal/gateway"
	"reseller_hub/internal/logger"
	"reseller_hub/internal/models"
	"reseller_hub/internal/report"
	"reseller_hub/internal/repository"
	"reseller_hub/internal/settlement"
)

const notifyTimeout = 10 * time.Second

// Notifier delivers a text message to a reseller's phone.
type Notifier interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

type PayoutService interface {
	Summary(ctx context.Context, now time.Time) (settlement.Summary, error)
	TogglePaid(ctx context.Context, orderID string, now time.Time) (settlement.Summary, error)
	Document(ctx context.Context, now time.Time, w io.Writer) (string, error)
}

type PayoutOption func(*payoutService)

// WithToggleGuard shares pending payment writes beyond this process.
func WithToggleGuard(g settlement.Guard) PayoutOption {
	return func(s *payoutService) {
		s.guard = g
	}
}

// WithNotifier tells resellers when their commission is settled.
func WithNotifier(n Notifier) PayoutOption {
	return func(s *payoutService) {
		s.notifier = n
	}
}

type payoutService struct {
	orderRepo repository.OrderRepository
	store     settlement.PaidStore
	guard     settlement.Guard
	notifier  Notifier
	loc       *time.Location
	log       zerolog.Logger
}

func NewPayoutService(orderRepo repository.OrderRepository, store settlement.PaidStore, loc *time.Location, opts ...PayoutOption) PayoutService {
	if loc == nil {
		loc = time.UTC
	}
	s := &payoutService{
		orderRepo: orderRepo,
		store:     store,
		loc:       loc,
		log:       logger.WithComponent("payout"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary aggregates every delivered order against the week containing now.
// A failed read returns no summary at all.
func (s *payoutService) Summary(ctx context.Context, now time.Time) (settlement.Summary, error) {
	orders, err := s.orderRepo.GetDelivered(ctx)
	if err != nil {
		return settlement.Summary{}, fmt.Errorf("load delivered orders: %w", err)
	}
	return settlement.Summarize(orders, now.In(s.loc)), nil
}

func (s *payoutService) TogglePaid(ctx context.Context, orderID string, now time.Time) (settlement.Summary, error) {
	orders, err := s.orderRepo.GetDelivered(ctx)
	if err != nil {
		return settlement.Summary{}, fmt.Errorf("load delivered orders: %w", err)
	}

	var opts []settlement.LedgerOption
	if s.guard != nil {
		opts = append(opts, settlement.WithGuard(s.guard))
	}
	ledger := settlement.NewLedger(orders, now.In(s.loc), s.store, opts...)

	summary, err := ledger.TogglePaid(ctx, orderID)
	if err != nil {
		return summary, err
	}

	order, _ := ledger.Order(orderID)
	s.log.Info().Str("order_id", orderID).Bool("is_paid", order.IsPaid).Msg("payment state changed")
	if order.IsPaid {
		s.notifySettled(ctx, &order)
	}
	return summary, nil
}

// notifySettled is best effort: the payment is already stored, so a failed
// message is only logged.
func (s *payoutService) notifySettled(ctx context.Context, o *models.Order) {
	if s.notifier == nil || o.Reseller == nil || o.Reseller.WhatsAppNo == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	msg := fmt.Sprintf("Hi %s, your commission of Rs. %s for order %s has been settled. Thank you!",
		o.Reseller.ResellerName, o.CommissionAmount.StringFixed(2), o.OrderID)
	if err := s.notifier.SendTextMessage(ctx, o.Reseller.WhatsAppNo, msg); err != nil {
		s.log.Warn().Err(err).Str("order_id", o.OrderID).Msg("failed to notify reseller")
	}
}

// Document writes the settlement PDF and returns its download name.
func (s *payoutService) Document(ctx context.Context, now time.Time, w io.Writer) (string, error) {
	summary, err := s.Summary(ctx, now)
	if err != nil {
		return "", err
	}
	if err := report.WriteDocument(w, summary, now.In(s.loc)); err != nil {
		return "", err
	}
	return report.DocumentFileName(summary.WeekStart), nil
}

type orderPaidStore struct {
	gw *gateway.Gateway
}

// NewOrderPaidStore persists paid flags straight to the orders relation.
func NewOrderPaidStore(gw *gateway.Gateway) settlement.PaidStore {
	return &orderPaidStore{gw: gw}
}

// SetPaid flips the flag only from its opposite value, so a toggle computed
// from an outdated read cannot repeat a write another request already made.
func (p *orderPaidStore) SetPaid(ctx context.Context, orderID string, paid bool) error {
	err := p.gw.Update(ctx, gateway.Orders,
		map[string]interface{}{"is_paid": paid},
		gateway.Filter{"order_id": orderID, "is_paid": !paid},
	)
	if errors.Is(err, gateway.ErrNotFound) {
		return fmt.Errorf("%w: order %s", settlement.ErrStaleState, orderID)
	}
	return err
}
