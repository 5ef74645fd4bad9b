package models

import "time"

type MenuItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category     string    `gorm:"type:varchar(100);index" json:"category"`
	IsAvailable  bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu"
}
