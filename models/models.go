package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Plan{},
		&Restaurant{},
		&User{},
		&MenuItem{},
		&Order{},
		&OrderItem{},
		&Notification{},
	}
}
