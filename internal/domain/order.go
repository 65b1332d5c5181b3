package domain

import (
	"slices"
	"time"
)

type Address struct {
	Street  string `json:"street" validate:"notblank"`
	City    string `json:"city" validate:"notblank"`
	State   string `json:"state" validate:"notblank"`
	Zip     string `json:"zip" validate:"notblank"`
	Country string `json:"country"`
}

type OrderStatus string

const (
	OrderPlaced     OrderStatus = "placed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

var orderStatusFlow = []OrderStatus{OrderPlaced, OrderProcessing, OrderShipped, OrderDelivered}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	return status, slices.Contains(orderStatusFlow, status)
}

// Step returns the zero-based position of s in the fulfilment flow, or -1.
func (s OrderStatus) Step() int {
	return slices.Index(orderStatusFlow, s)
}

// Progress returns how far along the fulfilment flow s is, in percent.
func (s OrderStatus) Progress() int {
	step := s.Step()
	if step < 0 {
		return 0
	}
	return step * 100 / (len(orderStatusFlow) - 1)
}

type OrderItem struct {
	Product  Product
	Quantity int
}

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	TotalAmount     int64
	DeliveryAddress Address
	Status          OrderStatus
	CreatedAt       time.Time
}

// OrderRequest is what checkout submits to the remote order-creation call.
// Only product lines are itemized; lab tests and health packages contribute to
// TotalAmount and nothing else.
type OrderRequest struct {
	Items                []OrderItem
	TotalAmount          int64
	DeliveryAddress      Address
	RequiresPrescription bool
}

// ItemizedAmount is the value of Items at the prices carried by the products.
func (r OrderRequest) ItemizedAmount() int64 {
	var sum int64
	for _, item := range r.Items {
		sum += item.Product.effectivePrice() * int64(item.Quantity)
	}
	return sum
}

// UnitemizedAmount is the part of TotalAmount that Items do not account for.
func (r OrderRequest) UnitemizedAmount() int64 {
	return r.TotalAmount - r.ItemizedAmount()
}

func (p Product) effectivePrice() int64 {
	return p.lineItem(1).UnitPrice
}
