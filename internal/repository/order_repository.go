package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"reseller_hub/internal/gateway"
	"reseller_hub/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	List(ctx context.Context, search string) ([]models.Order, error)
	GetDelivered(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, orderID string) error
}

type orderRepository struct {
	db *gorm.DB
	gw *gateway.Gateway
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db, gw: gateway.New(db)}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Omit("Item", "Reseller").Create(order).Error
	return gateway.Classify("insert", gateway.Orders, err)
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Reseller").
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, gateway.Classify("select", gateway.Orders, err)
	}
	return &order, nil
}

// List returns orders newest first with their item and reseller joined. A
// non-empty search matches the customer name or order id, case-insensitively.
func (r *orderRepository) List(ctx context.Context, search string) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Reseller").
		Order("date DESC").
		Order("order_id DESC")
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(customer_name) LIKE ? OR LOWER(order_id) LIKE ?", like, like)
	}
	err := query.Find(&orders).Error
	return orders, gateway.Classify("select", gateway.Orders, err)
}

// GetDelivered returns every Delivered order, newest first, with the
// reseller joined for reporting.
func (r *orderRepository) GetDelivered(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Reseller").
		Where("delivery_status = ?", models.StatusDelivered).
		Order("date DESC").
		Order("order_id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, gateway.Classify("select", gateway.Orders, err)
	}
	return orders, nil
}

// Update rewrites the editable columns of an order. The paid flag is only
// changed through the payout ledger.
func (r *orderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.gw.Update(ctx, gateway.Orders, map[string]interface{}{
		"date":               order.Date,
		"courier_service":    order.CourierService,
		"tracking_no":        order.TrackingNo,
		"customer_name":      order.CustomerName,
		"customer_address":   order.CustomerAddress,
		"contact_no_1":       order.ContactNo1,
		"contact_no_2":       order.ContactNo2,
		"item_id":            order.ItemID,
		"reseller_id":        order.ResellerID,
		"buy_price_at_sale":  order.BuyPriceAtSale,
		"sell_price_at_sale": order.SellPriceAtSale,
		"delivery_charges":   order.DeliveryCharges,
		"commission_amount":  order.CommissionAmount,
		"delivery_status":    order.DeliveryStatus,
	}, gateway.Eq("order_id", order.OrderID))
}

func (r *orderRepository) Delete(ctx context.Context, orderID string) error {
	return r.gw.Delete(ctx, gateway.Orders, gateway.Eq("order_id", orderID))
}
