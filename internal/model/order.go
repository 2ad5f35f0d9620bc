package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPacked    OrderStatus = "packed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// statusRank orders the forward path. Cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPacked:    2,
	StatusShipped:   3,
	StatusDelivered: 4,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
// Forward moves may skip steps; cancelled is reachable from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// PaymentMethod is the payment option recorded on an order.
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

// Valid reports whether m is one of the accepted tokens.
func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCOD
}

// VariantInfo describes the variant a line was bought as.
type VariantInfo struct {
	VariantID     string `json:"variant_id"`
	AttributeName string `json:"attribute_name"`
	ValueName     string `json:"value_name"`
}

// Order represents a customer order.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrderID        string          `json:"orderId" db:"order_id"`
	CustomerName   string          `json:"customerName" db:"customer_name"`
	CustomerPhone  string          `json:"customerPhone" db:"customer_phone"`
	CustomerEmail  *string         `json:"customerEmail,omitempty" db:"customer_email"`
	Address        string          `json:"address" db:"address"`
	Status         OrderStatus     `json:"status" db:"status"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	CouponCode     *string         `json:"couponCode,omitempty" db:"coupon_code"`
	CouponDiscount decimal.Decimal `json:"couponDiscount" db:"coupon_discount"`
	Total          decimal.Decimal `json:"total" db:"total"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a snapshot of a cart line taken when the order was placed.
type OrderItem struct {
	ID           uuid.UUID       `json:"-" db:"id"`
	OrderID      uuid.UUID       `json:"-" db:"order_id"`
	ProductID    string          `json:"productId" db:"product_id"`
	ProductName  string          `json:"productName" db:"product_name"`
	ProductPrice decimal.Decimal `json:"productPrice" db:"product_price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	VariantInfo  *VariantInfo    `json:"variantInfo,omitempty" db:"variant_info"`
}

// MessageAuthor identifies who wrote an order message.
type MessageAuthor string

const (
	AuthorCustomer MessageAuthor = "customer"
	AuthorAdmin    MessageAuthor = "admin"
)

// OrderMessage is one entry in an order's append-only thread.
type OrderMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	Message   string    `json:"message" db:"message"`
	IsAdmin   bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Customer holds the contact and delivery details collected at checkout.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

// CheckoutRequest represents the request payload for placing an order.
type CheckoutRequest struct {
	Customer       Customer      `json:"customer"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	CouponCode     string        `json:"couponCode,omitempty"`
	AcceptPolicies bool          `json:"acceptPolicies"`
}

// Quote is the checkout price breakdown for a cart.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	CouponCode     string          `json:"couponCode,omitempty"`
	CouponDiscount decimal.Decimal `json:"couponDiscount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"itemCount"`
	CODAvailable   bool            `json:"codAvailable"`
}

// PlacedOrder is returned to the shopper once an order is committed.
type PlacedOrder struct {
	OrderID string          `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
	Status  OrderStatus     `json:"status"`
}

// OrderDetail is an order with its items and message thread.
type OrderDetail struct {
	Order    Order          `json:"order"`
	Items    []OrderItem    `json:"items"`
	Messages []OrderMessage `json:"messages"`
}

// StatusUpdateRequest is the admin payload for moving an order along.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

// MessageRequest is the payload for appending to an order thread. Phone is
// required when the customer posts.
type MessageRequest struct {
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}
