package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known lifecycle states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// FreeDeliveryThreshold is the subtotal at which delivery becomes free.
const FreeDeliveryThreshold = 1000.0

type ShippingAddress struct {
	FullName     string `json:"full_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Phone        string `json:"phone"`
}

type PaymentDetails struct {
	TransactionID string `json:"transaction_id"`
	PaymentID     string `json:"payment_id"`
}

type RefundDetails struct {
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
	BankName          string `json:"bank_name"`
}

// Present reports whether refund bank details have been submitted.
func (r RefundDetails) Present() bool {
	return r.AccountNumber != ""
}

type Order struct {
	BaseModel
	UserID               uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	User                 *User           `json:"user,omitempty"`
	TrackingCode         string          `gorm:"uniqueIndex" json:"tracking_code"`
	Status               OrderStatus     `gorm:"index" json:"status"`
	PlacedAt             time.Time       `json:"placed_at"`
	Subtotal             float64         `json:"subtotal"`
	DeliveryCharge       float64         `json:"delivery_charge"`
	TotalAmount          float64         `json:"total_amount"`
	ShippingAddress      ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod        string          `json:"payment_method"` // cod|online
	PaymentStatus        PaymentStatus   `json:"payment_status"`
	PaymentDetails       PaymentDetails  `gorm:"embedded;embeddedPrefix:payment_" json:"payment_details"`
	CancellationReason   string          `json:"cancellation_reason"`
	RefundDetails        RefundDetails   `gorm:"embedded;embeddedPrefix:refund_" json:"refund_details"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date"`
	CourierService       string          `json:"courier_service"`
	Items                []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	LineTotal   float64    `json:"line_total"`
}
