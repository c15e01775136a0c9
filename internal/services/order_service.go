package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"reseller_hub/internal/models"
	"reseller_hub/internal/repository"
)

const (
	orderConflictMessage  = "Order ID already exists."
	defaultCourierService = "Royal Express"
	orderDateLayout       = "2006-01-02"
)

var hundred = decimal.NewFromInt(100)

// OrderInput is an order as submitted by the operator. The commission is
// always derived, so the input has no field for it.
type OrderInput struct {
	OrderID         string                `json:"order_id"`
	Date            string                `json:"date"`
	CourierService  string                `json:"courier_service"`
	TrackingNo      string                `json:"tracking_no"`
	CustomerName    string                `json:"customer_name"`
	CustomerAddress string                `json:"customer_address"`
	ContactNo1      string                `json:"contact_no_1"`
	ContactNo2      string                `json:"contact_no_2"`
	ItemID          string                `json:"item_id"`
	ResellerID      string                `json:"reseller_id"`
	BuyPriceAtSale  decimal.Decimal       `json:"buy_price_at_sale"`
	SellPriceAtSale decimal.Decimal       `json:"sell_price_at_sale"`
	DeliveryCharges decimal.Decimal       `json:"delivery_charges"`
	DeliveryStatus  models.DeliveryStatus `json:"delivery_status"`
}

// ItemOption and ResellerOption are the pick-list entries of the order form.
type ItemOption struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
}

type ResellerOption struct {
	ResellerID   string `json:"reseller_id"`
	ResellerName string `json:"reseller_name"`
}

// FormOptions is everything the order screen needs, loaded together.
type FormOptions struct {
	Orders    []models.Order   `json:"orders"`
	Items     []ItemOption     `json:"items"`
	Resellers []ResellerOption `json:"resellers"`
}

type OrderService interface {
	List(ctx context.Context, search string) ([]models.Order, error)
	Get(ctx context.Context, orderID string) (*models.Order, error)
	Create(ctx context.Context, in OrderInput) (*models.Order, error)
	Update(ctx context.Context, orderID string, in OrderInput) (*models.Order, error)
	Delete(ctx context.Context, orderID string) error
	FormOptions(ctx context.Context) (*FormOptions, error)
	CommissionRate(ctx context.Context) (decimal.Decimal, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	itemRepo      repository.ItemRepository
	resellerRepo  repository.ResellerRepository
	financialRepo repository.FinancialRepository
	defaultRate   decimal.Decimal
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
	resellerRepo repository.ResellerRepository,
	financialRepo repository.FinancialRepository,
	defaultRate decimal.Decimal,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		resellerRepo:  resellerRepo,
		financialRepo: financialRepo,
		defaultRate:   defaultRate,
	}
}

func (s *orderService) List(ctx context.Context, search string) ([]models.Order, error) {
	return s.orderRepo.List(ctx, search)
}

func (s *orderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	order, err := in.toModel(strings.TrimSpace(in.OrderID))
	if err != nil {
		return nil, err
	}
	if err := required("order_id", order.OrderID); err != nil {
		return nil, err
	}
	if err := s.applyCommission(ctx, order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, friendlyConflict(err, orderConflictMessage)
	}
	return s.orderRepo.GetByID(ctx, order.OrderID)
}

// Update rewrites the editable fields and recomputes the commission. The
// paid flag is left as stored.
func (s *orderService) Update(ctx context.Context, orderID string, in OrderInput) (*models.Order, error) {
	order, err := in.toModel(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.applyCommission(ctx, order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) Delete(ctx context.Context, orderID string) error {
	return s.orderRepo.Delete(ctx, orderID)
}

// FormOptions loads orders, items and resellers concurrently. Any failure
// fails the whole load.
func (s *orderService) FormOptions(ctx context.Context) (*FormOptions, error) {
	var (
		opts      FormOptions
		items     []models.Item
		resellers []models.Reseller
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opts.Orders, err = s.orderRepo.List(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.itemRepo.List(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		resellers, err = s.resellerRepo.List(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load order form: %w", err)
	}

	opts.Items = make([]ItemOption, len(items))
	for i, it := range items {
		opts.Items[i] = ItemOption{ItemID: it.ItemID, ItemName: it.ItemName}
	}
	opts.Resellers = make([]ResellerOption, len(resellers))
	for i, r := range resellers {
		opts.Resellers[i] = ResellerOption{ResellerID: r.ResellerID, ResellerName: r.ResellerName}
	}
	if opts.Orders == nil {
		opts.Orders = []models.Order{}
	}
	return &opts, nil
}

// CommissionRate returns the active commission_rate setting, or the
// configured default when none is stored.
func (s *orderService) CommissionRate(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.financialRepo.GetSettings(ctx, models.SettingCommissionRate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.defaultRate, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get commission settings: %w", err)
	}
	return setting.PercentageValue, nil
}

func (s *orderService) applyCommission(ctx context.Context, order *models.Order) error {
	rate, err := s.CommissionRate(ctx)
	if err != nil {
		return err
	}
	order.CommissionAmount = Commission(order.SellPriceAtSale, rate)
	return nil
}

// Commission is rate percent of the sell price, rounded to cents.
func Commission(sellPrice, rate decimal.Decimal) decimal.Decimal {
	return sellPrice.Mul(rate).Div(hundred).Round(2)
}

func (in OrderInput) toModel(orderID string) (*models.Order, error) {
	if err := required("date", strings.TrimSpace(in.Date)); err != nil {
		return nil, err
	}
	date, err := time.Parse(orderDateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}

	order := &models.Order{
		OrderID:         orderID,
		Date:            date,
		CourierService:  strings.TrimSpace(in.CourierService),
		TrackingNo:      strings.TrimSpace(in.TrackingNo),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerAddress: in.CustomerAddress,
		ContactNo1:      strings.TrimSpace(in.ContactNo1),
		ContactNo2:      strings.TrimSpace(in.ContactNo2),
		ItemID:          strings.TrimSpace(in.ItemID),
		ResellerID:      strings.TrimSpace(in.ResellerID),
		BuyPriceAtSale:  in.BuyPriceAtSale,
		SellPriceAtSale: in.SellPriceAtSale,
		DeliveryCharges: in.DeliveryCharges,
		DeliveryStatus:  in.DeliveryStatus,
	}
	if order.CourierService == "" {
		order.CourierService = defaultCourierService
	}
	if order.DeliveryStatus == "" {
		order.DeliveryStatus = models.StatusPending
	}

	checks := []error{
		required("customer_name", order.CustomerName),
		required("customer_address", strings.TrimSpace(order.CustomerAddress)),
		required("contact_no_1", order.ContactNo1),
		required("item_id", order.ItemID),
		required("reseller_id", order.ResellerID),
		nonNegative("buy_price_at_sale", order.BuyPriceAtSale),
		nonNegative("sell_price_at_sale", order.SellPriceAtSale),
		nonNegative("delivery_charges", order.DeliveryCharges),
	}
	for _, err := range checks {
		if err != nil {
			return nil, err
		}
	}
	if !order.DeliveryStatus.Valid() {
		return nil, &ValidationError{Field: "delivery_status", Message: fmt.Sprintf("unknown status %q", order.DeliveryStatus)}
	}
	return order, nil
}
