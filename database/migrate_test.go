package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

func TestMigrateAndSeed(t *testing.T) {
	utils.InitLogger()
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var plans int64
	db.Model(&models.Plan{}).Count(&plans)
	assert.Equal(t, int64(3), plans)

	require.NoError(t, SeedSuperAdmin(db, "admin", ""))
	require.NoError(t, SeedSuperAdmin(db, "admin", "secret123"))
	require.NoError(t, SeedSuperAdmin(db, "other", "secret123"))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleSuperAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].Username)
}
