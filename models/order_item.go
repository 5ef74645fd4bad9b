package models

type OrderItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	OrderID    uint    `gorm:"not null;index" json:"order_id"`
	MenuItemID uint    `gorm:"not null;index" json:"menu_item_id"`
	Name       string  `gorm:"type:varchar(150);not null" json:"name"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal   float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Notes      string  `gorm:"type:text" json:"notes"`
}
