package models

import "time"

const (
	RestaurantActive    = "active"
	RestaurantSuspended = "suspended"
)

type Restaurant struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(150);not null" json:"name"`
	ShortCode       string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"short_code"`
	Plan            string    `gorm:"type:varchar(30);not null;default:'free'" json:"plan"`
	Status          string    `gorm:"type:varchar(15);not null;default:'active'" json:"status"`
	AcceptingOrders bool      `gorm:"not null;default:true" json:"accepting_orders"`
	Address         string    `gorm:"type:varchar(255)" json:"address"`
	Phone           string    `gorm:"type:varchar(30)" json:"phone"`
	TaxRate         float64   `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	PrinterAddr     string    `gorm:"type:varchar(100)" json:"printer_addr"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (r *Restaurant) IsActive() bool {
	return r.Status == RestaurantActive
}
