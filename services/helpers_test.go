package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

type fixture struct {
	db         *gorm.DB
	restaurant models.Restaurant
	tajine     models.MenuItem
	the        models.MenuItem
	manager    models.User
	cashier    models.User
	cook       models.User
	client     models.User
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, SeedPlans(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string, restaurantID *uint) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Role:         role,
		RestaurantID: restaurantID,
		Status:       models.UserActive,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{db: db}

	f.restaurant = models.Restaurant{
		Name:            "Dar Zitoun",
		ShortCode:       "DARZ",
		Plan:            "premium",
		Status:          models.RestaurantActive,
		AcceptingOrders: true,
		TaxRate:         10,
	}
	require.NoError(t, db.Create(&f.restaurant).Error)

	f.tajine = models.MenuItem{RestaurantID: f.restaurant.ID, Name: "Tajine", Price: 35, Category: "Plats", IsAvailable: true}
	f.the = models.MenuItem{RestaurantID: f.restaurant.ID, Name: "Thé", Price: 15, Category: "Boissons", IsAvailable: true}
	require.NoError(t, db.Create(&f.tajine).Error)
	require.NoError(t, db.Create(&f.the).Error)

	rid := f.restaurant.ID
	f.manager = createUser(t, db, "manager", models.RoleManager, &rid)
	f.cashier = createUser(t, db, "cashier", models.RoleCashier, &rid)
	f.cook = createUser(t, db, "cook", models.RoleCook, &rid)
	f.client = createUser(t, db, "sara", models.RoleClient, &rid)
	require.NoError(t, db.Model(&f.client).Association("Restaurants").Append(&f.restaurant))
	return f
}

func (f *fixture) actor(u models.User) Actor {
	a := Actor{UserID: u.ID, Role: u.Role, Name: u.DisplayName()}
	if u.RestaurantID != nil {
		a.RestaurantID = *u.RestaurantID
	}
	return a
}

func (f *fixture) basket() CreateOrderInput {
	return CreateOrderInput{Items: []OrderItemInput{
		{MenuItemID: f.tajine.ID, Quantity: 2},
		{MenuItemID: f.the.ID, Quantity: 1},
	}}
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, utils.StatusOf(err), err.Error())
}
