package models

import "time"

// Cart line item types.
const (
	ItemTypeArtwork = "artwork"
	ItemTypeEvent   = "event"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// CartItem is one line of a user's shopping cart.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_line" json:"userId"`
	ItemType  string    `gorm:"size:16;not null;uniqueIndex:idx_cart_line" json:"itemType"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_cart_line" json:"itemId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Order is a checkout attempt with prices frozen at creation time.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"userId"`
	Status      string `gorm:"size:16;not null;index" json:"status"`
	TotalAmount int64  `gorm:"not null" json:"totalAmount"`
	// CommissionAmount is the platform's share of TotalAmount at the commission rate in force at checkout.
	CommissionAmount int64       `gorm:"not null;default:0" json:"commissionAmount"`
	Currency         string      `gorm:"size:8;not null" json:"currency"`
	StripeSessionID  *string     `gorm:"size:255;uniqueIndex" json:"-"`
	PaidAt           *time.Time  `json:"paidAt,omitempty"`
	Items            []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// OrderItem is a snapshot of a purchased cart line.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"orderId"`
	ItemType  string `gorm:"size:16;not null" json:"itemType"`
	ItemID    uint   `gorm:"not null" json:"itemId"`
	Title     string `gorm:"size:200;not null" json:"title"`
	UnitPrice int64  `gorm:"not null" json:"unitPrice"`
	Quantity  int    `gorm:"not null" json:"quantity"`
}
