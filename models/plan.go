package models

import "time"

// Plan is a subscription tier a restaurant is billed on.
type Plan struct {
	Code         string    `gorm:"primaryKey;type:varchar(30)" json:"code" yaml:"code"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name" yaml:"name"`
	MonthlyPrice float64   `gorm:"type:decimal(10,2);not null;default:0" json:"monthly_price" yaml:"monthly_price"`
	MaxStaff     int       `gorm:"not null;default:0" json:"max_staff" yaml:"max_staff"`
	MaxMenuItems int       `gorm:"not null;default:0" json:"max_menu_items" yaml:"max_menu_items"`
	Active       bool      `gorm:"not null;default:true" json:"active" yaml:"active"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}
