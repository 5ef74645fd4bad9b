// Package database creates the schema and the rows a fresh install needs.
package database

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

// Migrate creates or updates every table and seeds the plan catalog.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := services.SeedPlans(db); err != nil {
		return err
	}

	var tables []string
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err == nil {
			tables = append(tables, stmt.Schema.Table)
		}
	}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			return fmt.Errorf("table %s missing after migration", table)
		}
	}
	utils.InfoLogger.Infof("schema ready (%d tables)", len(tables))
	return nil
}

// SeedSuperAdmin creates the platform operator account when none exists.
// Nothing happens without a password.
func SeedSuperAdmin(db *gorm.DB, username, password string) error {
	if password == "" {
		return nil
	}
	var existing models.User
	err := db.Where("role = ?", models.RoleSuperAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     "Super Admin",
		Role:         models.RoleSuperAdmin,
		Status:       models.UserActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create super admin: %w", err)
	}
	utils.InfoLogger.Infof("super admin %q created", username)
	return nil
}
