package models

import "time"

// Product represents a product in the catalog. The catalog owns these;
// the state engine only ever references them by ID.
type Product struct {
	ID         int64   `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Brand      string  `db:"brand" json:"brand"`
	Category   string  `db:"category" json:"category"`
	Price      int64   `db:"price" json:"price"`
	Rating     float64 `db:"rating" json:"rating"`
	Featured   bool    `db:"featured" json:"featured"`
	NewArrival bool    `db:"new_arrival" json:"new_arrival"`
}

// CartLine is one entry in the cart, keyed by (ProductID, Size).
// The same product in two sizes is two distinct lines.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// Key returns the merge key for a cart line.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size}
}

// LineKey identifies a cart line.
type LineKey struct {
	ProductID int64
	Size      string
}

// ShippingProfile is the cached last-used shipping details. One record per
// client, overwritten wholesale on save; a convenience cache, not identity.
type ShippingProfile struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// UserRef identifies the signed-in user as reported by the auth session.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Order is a frozen snapshot of a checkout. Items and TotalAmount never
// change after creation; only Status, TrackingNumber, EstimatedDelivery
// and UpdatedAt may be updated.
type Order struct {
	ID                int64           `json:"id"`
	UserID            string          `json:"user_id"`
	OrderNumber       string          `json:"order_number"`
	Status            OrderStatus     `json:"status"`
	Items             []OrderLine     `json:"items"`
	TotalAmount       int64           `json:"total_amount"`
	ShippingAddress   ShippingProfile `json:"shipping_address"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	EstimatedDelivery string          `json:"estimated_delivery,omitempty"`
}

// OrderLine is a denormalized snapshot of a purchased item. Name and price
// are copied at checkout so the order stays renderable even if the product
// later disappears from the catalog.
type OrderLine struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	Size        string `json:"size"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order statuses. pending -> processing -> shipped -> delivered;
// cancelled is reachable from pending and processing only.
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Cancellable reports whether an order in state s may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

// Payment methods.
const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodBanking PaymentMethod = "banking"
)
