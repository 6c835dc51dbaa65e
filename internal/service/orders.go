package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"storefront-core/internal/auth"
	"storefront-core/internal/kvstore"
	"storefront-core/internal/models"
	"storefront-core/internal/notify"
	"storefront-core/internal/util"
)

// OrderService creates and queries orders. An order is a frozen snapshot of
// a checkout: items and total never change after creation, whatever happens
// to the cart or catalog afterwards.
type OrderService struct {
	bucket  *kvstore.Bucket[[]models.Order]
	cart    *CartService
	session auth.Session
	sink    notify.Sink
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrderService creates an order service over the given store.
func NewOrderService(store *kvstore.Store, cart *CartService, session auth.Session, sink notify.Sink) *OrderService {
	return &OrderService{
		bucket: kvstore.NewBucket(store, KeyOrders, func() []models.Order {
			return []models.Order{}
		}),
		cart:    cart,
		session: session,
		sink:    sink,
		logger:  util.GetLogger(),
		now:     time.Now,
	}
}

// CreateOrderRequest carries everything needed to place an order. Items
// must already be priced snapshots; the order never re-resolves them.
type CreateOrderRequest struct {
	UserID          string
	Items           []models.OrderLine
	ShippingAddress models.ShippingProfile
	PaymentMethod   models.PaymentMethod
}

// CreateOrder appends a new pending order. The ID is max(existing)+1 so
// ordering stays stable for pagination; the order number is a human-facing
// code generated once and never reused. A storage write failure means the
// order was not placed, and the caller must not clear the cart.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, &ValidationError{Reason: "cannot place an order with no items"}
	}
	if req.UserID == "" {
		util.OrdersFailedTotal.WithLabelValues("no_user").Inc()
		return nil, &ValidationError{Reason: "cannot place an order without a user"}
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
			return nil, &ValidationError{Reason: fmt.Sprintf("invalid quantity %d for product %d", item.Quantity, item.ProductID)}
		}
	}

	orders := s.bucket.Load()

	var maxID int64
	for _, o := range orders {
		if o.ID > maxID {
			maxID = o.ID
		}
	}

	items := make([]models.OrderLine, len(req.Items))
	copy(items, req.Items)

	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}

	now := s.now()
	order := models.Order{
		ID:              maxID + 1,
		UserID:          req.UserID,
		OrderNumber:     s.generateOrderNumber(now),
		Status:          models.OrderStatusPending,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bucket.Save(append(orders, order)); err != nil {
		util.OrdersFailedTotal.WithLabelValues("storage").Inc()
		s.sink.Notify(notify.KindError, "Order not placed", "Your order could not be saved. Please try again.")
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.sink.Notify(notify.KindSuccess, "Order placed",
		fmt.Sprintf("Order %s is being prepared.", order.OrderNumber))
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_amount", order.TotalAmount))
	return &order, nil
}

// CheckoutCart snapshots the current cart, places an order for the signed-in
// user and clears the cart. The cart is cleared only after the order write
// succeeded, so a failed checkout leaves the cart intact.
func (s *OrderService) CheckoutCart(ctx context.Context, shipping models.ShippingProfile, method models.PaymentMethod) (*models.Order, error) {
	user := s.session.CurrentUser()
	if user == nil {
		util.OrdersFailedTotal.WithLabelValues("no_user").Inc()
		return nil, &ValidationError{Reason: "sign in to place an order"}
	}

	items, err := s.cart.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.CreateOrder(CreateOrderRequest{
		UserID:          user.ID,
		Items:           items,
		ShippingAddress: shipping,
		PaymentMethod:   method,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.cart.Clear(); err != nil {
		// The order exists; a stale cart is recoverable, a lost order is not.
		s.logger.Warn("Failed to clear cart after checkout",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

// UserOrders returns userID's orders, most recent first. The descending
// createdAt ordering is load-bearing for pagination and must not change.
func (s *OrderService) UserOrders(userID string) []models.Order {
	var orders []models.Order
	for _, o := range s.bucket.Load() {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

// OrderByID returns the order with the given ID, or nil if absent.
func (s *OrderService) OrderByID(id int64) *models.Order {
	for _, o := range s.bucket.Load() {
		if o.ID == id {
			cp := o
			return &cp
		}
	}
	return nil
}

// OrderForCurrentUser returns the order with the given ID if it belongs to
// the signed-in user. A foreign order yields ErrUnauthorized, distinct from
// the nil, nil of a plain miss, so the UI can word the two differently.
func (s *OrderService) OrderForCurrentUser(id int64) (*models.Order, error) {
	order := s.OrderByID(id)
	if order == nil {
		return nil, nil
	}
	user := s.session.CurrentUser()
	if user == nil || order.UserID != user.ID {
		return nil, ErrUnauthorized
	}
	return order, nil
}

// UpdateOrderStatus sets the status of an order. Returns false if the ID is
// absent. Items and total are untouched; only status and updatedAt move.
func (s *OrderService) UpdateOrderStatus(id int64, status models.OrderStatus) (bool, error) {
	if !status.Valid() {
		return false, &ValidationError{Reason: fmt.Sprintf("unknown order status %q", status)}
	}

	orders := s.bucket.Load()
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		orders[i].Status = status
		orders[i].UpdatedAt = s.now()
		if err := s.bucket.Save(orders); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// CancelOrder cancels an order that has not shipped yet. Cancelling a
// shipped, delivered or already cancelled order is a validation failure.
func (s *OrderService) CancelOrder(id int64) (bool, error) {
	order := s.OrderByID(id)
	if order == nil {
		return false, nil
	}
	if !order.Status.Cancellable() {
		return false, &ValidationError{Reason: fmt.Sprintf("order %d can no longer be cancelled (status %s)", id, order.Status)}
	}

	ok, err := s.UpdateOrderStatus(id, models.OrderStatusCancelled)
	if err != nil || !ok {
		return ok, err
	}
	util.OrdersCancelledTotal.Inc()
	s.sink.Notify(notify.KindInfo, "Order cancelled",
		fmt.Sprintf("Order %s has been cancelled.", order.OrderNumber))
	return true, nil
}

// AddTrackingInfo attaches shipment tracking to an order. Returns false if
// the ID is absent. estimatedDelivery may be empty.
func (s *OrderService) AddTrackingInfo(id int64, trackingNumber, estimatedDelivery string) (bool, error) {
	orders := s.bucket.Load()
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		orders[i].TrackingNumber = trackingNumber
		if estimatedDelivery != "" {
			orders[i].EstimatedDelivery = estimatedDelivery
		}
		orders[i].UpdatedAt = s.now()
		if err := s.bucket.Save(orders); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// generateOrderNumber builds the human-facing order code: PL, the six
// low-order digits of the current unix milliseconds, and a random 3-digit
// suffix. Not cryptographically unique, but unique in practice for a
// single-store client. Never derived from the order ID.
func (s *OrderService) generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("PL%06d%03d", now.UnixMilli()%1_000_000, rand.Intn(1000))
}
