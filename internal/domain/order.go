package domain

import "time"

// Order statuses used by the payment flow.
const (
	OrderPending   = "Pending"
	OrderConfirmed = "Confirmed"
)

// OrderItem is a line on an order; it is stored as received.
type OrderItem struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Qty   int    `json:"qty"`
}

// Order is a storefront order. Orders live outside dispatch and only share the event hub.
type Order struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	Status    string      `json:"status"`
	Total     int64       `json:"total"`
	Grand     int64       `json:"grand"`
	Fee       int64       `json:"fee"`
	Discount  int64       `json:"discount"`
	Mode      string      `json:"mode"`
	When      string      `json:"when"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone"`
	Addr      string      `json:"addr"`
	Items     []OrderItem `json:"items"`
	PaidAt    *time.Time  `json:"paidAt,omitempty"`
}

// Clone returns a deep copy safe to hand out of a store.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.PaidAt != nil {
		at := *o.PaidAt
		c.PaidAt = &at
	}
	return &c
}

// PlaceOrderRequest is the body of POST /orders. Unset fields take storefront defaults.
type PlaceOrderRequest struct {
	ID       string      `json:"id" binding:"max=64"`
	Status   string      `json:"status" binding:"max=32"`
	Total    int64       `json:"total" binding:"gte=0"`
	Grand    *int64      `json:"grand" binding:"omitempty,gte=0"`
	Fee      int64       `json:"fee" binding:"gte=0"`
	Discount int64       `json:"discount" binding:"gte=0"`
	Mode     string      `json:"mode" binding:"omitempty,oneof=delivery pickup"`
	When     string      `json:"when" binding:"omitempty,when"`
	Name     string      `json:"name" binding:"max=128"`
	Phone    string      `json:"phone" binding:"max=32"`
	Addr     string      `json:"addr" binding:"max=512"`
	Items    []OrderItem `json:"items" binding:"max=200"`
}

// SimulatePaymentRequest is the body of POST /payments/simulate.
type SimulatePaymentRequest struct {
	ID      string `json:"id" binding:"required"`
	DelayMs *int   `json:"delay" binding:"omitempty,gte=0,lte=600000"`
}

// PaymentWebhookRequest is the body of POST /payments/webhook.
type PaymentWebhookRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"max=32"`
}
