package models

import "time"

const (
	RoleSuperAdmin = "super_admin"
	RoleManager    = "manager"
	RoleCashier    = "cashier"
	RoleCook       = "cook"
	RoleClient     = "client"
)

const (
	UserActive   = "active"
	UserDisabled = "disabled"
)

type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string       `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string       `gorm:"type:varchar(150)" json:"full_name"`
	Role         string       `gorm:"type:varchar(20);not null;index" json:"role"`
	RestaurantID *uint        `gorm:"index" json:"restaurant_id"`
	Restaurants  []Restaurant `gorm:"many2many:user_restaurants;" json:"restaurants,omitempty"`
	Status       string       `gorm:"type:varchar(15);not null;default:'active'" json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DisplayName falls back to the username when no full name was given.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// IsStaffRole reports whether role belongs to restaurant personnel.
func IsStaffRole(role string) bool {
	switch role {
	case RoleManager, RoleCashier, RoleCook:
		return true
	}
	return false
}

// IsValidRole reports whether role is known.
func IsValidRole(role string) bool {
	return IsStaffRole(role) || role == RoleClient || role == RoleSuperAdmin
}
