package models

import (
	"time"
)

const (
	SourceApp     = "app"
	SourceWeb     = "web"
	SourceCounter = "counter"
)

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	RestaurantID    uint        `gorm:"not null;index;uniqueIndex:idx_orders_restaurant_number,priority:1" json:"restaurant_id"`
	OrderNumber     string      `gorm:"type:varchar(30);not null;uniqueIndex:idx_orders_restaurant_number,priority:2" json:"order_number"`
	Status          string      `gorm:"type:varchar(20);not null;index;default:'awaiting_approval'" json:"status"`
	TotalAmount     float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	UserID          *uint       `gorm:"index" json:"user_id"`
	ClientName      string      `gorm:"type:varchar(150)" json:"client_name"`
	CaissierName    string      `gorm:"type:varchar(150)" json:"caissier_name"`
	CuisinierName   string      `gorm:"type:varchar(150)" json:"cuisinier_name"`
	Notes           string      `gorm:"type:text" json:"notes"`
	Source          string      `gorm:"type:varchar(10);not null;default:'app'" json:"source"`
	RejectionReason string      `gorm:"type:varchar(255)" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time  `json:"approved_at,omitempty"`
	PreparingAt     *time.Time  `json:"preparing_at,omitempty"`
	ReadyAt         *time.Time  `json:"ready_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
}

// BelongsTo reports whether the order was placed by userID.
func (o *Order) BelongsTo(userID uint) bool {
	return o.UserID != nil && *o.UserID == userID
}
