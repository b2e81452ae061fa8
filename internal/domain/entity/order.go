package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is owned by the backend; the client only requests transitions.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is known.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

// OrderBuyer is the buyer projection embedded in an order.
type OrderBuyer struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
}

// OrderProduct is the product projection embedded in an order line.
type OrderProduct struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PrimaryImage string `json:"primaryImage,omitempty"`
	SellerID     string `json:"sellerId,omitempty"`
}

// OrderItem is one purchased line, priced at checkout time.
type OrderItem struct {
	Product  OrderProduct    `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// AppliedCoupon records a coupon redeemed on an order.
type AppliedCoupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

type Order struct {
	ID             string          `json:"id"`
	Buyer          OrderBuyer      `json:"buyer"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Status         OrderStatus     `json:"status"`
	AppliedCoupons []AppliedCoupon `json:"appliedCoupons"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// CanCancel reports whether the buyer-side cancel action should be offered.
func (o Order) CanCancel() bool {
	return o.Status == OrderPending
}

// NextStatuses lists the back-office transitions worth offering for the
// current status. The backend still decides whether a transition is accepted.
func (o Order) NextStatuses() []OrderStatus {
	switch o.Status {
	case OrderPending:
		return []OrderStatus{OrderShipped, OrderCancelled}
	case OrderShipped:
		return []OrderStatus{OrderDelivered}
	default:
		return nil
	}
}

// ShippingAddress is collected at checkout.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// CheckoutRequest turns the current cart into an order.
type CheckoutRequest struct {
	CouponCodes     []string        `json:"couponCodes"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}
