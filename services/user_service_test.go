package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-platform/models"
)

func TestDeleteUserWithOrders(t *testing.T) {
	f := setupFixture(t)
	users := NewUserService(f.db)
	ctx := context.Background()

	_, err := NewOrderService(f.db, nil).Create(ctx, f.actor(f.client), f.basket())
	require.NoError(t, err)

	requireStatus(t, users.Delete(ctx, f.actor(f.manager), f.client.ID), http.StatusConflict)
	require.NoError(t, users.Delete(ctx, f.actor(f.manager), f.cook.ID))

	var count int64
	f.db.Model(&models.User{}).Where("id = ?", f.cook.ID).Count(&count)
	assert.Zero(t, count)

	requireStatus(t, users.Delete(ctx, f.actor(f.manager), f.manager.ID), http.StatusBadRequest)
}

func TestCreateStaffUser(t *testing.T) {
	f := setupFixture(t)
	users := NewUserService(f.db)
	ctx := context.Background()

	user, err := users.Create(ctx, f.actor(f.manager), CreateUserInput{Username: "Nadia", Password: "secret123", Role: models.RoleCashier})
	require.NoError(t, err)
	assert.Equal(t, "nadia", user.Username)
	assert.Equal(t, f.restaurant.ID, *user.RestaurantID)

	_, err = users.Create(ctx, f.actor(f.manager), CreateUserInput{Username: "nadia", Password: "secret123", Role: models.RoleCook})
	requireStatus(t, err, http.StatusConflict)

	_, err = users.Create(ctx, f.actor(f.manager), CreateUserInput{Username: "x", Password: "secret123", Role: models.RoleSuperAdmin})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = users.Create(ctx, f.actor(f.manager), CreateUserInput{Username: "y", Password: "123", Role: models.RoleCook})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = users.Create(ctx, f.actor(f.cashier), CreateUserInput{Username: "z", Password: "secret123", Role: models.RoleCook})
	requireStatus(t, err, http.StatusForbidden)
}

func TestStaffPlanLimit(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.db.Model(&f.restaurant).Update("plan", "free").Error)

	_, err := NewUserService(f.db).Create(context.Background(), f.actor(f.manager),
		CreateUserInput{Username: "extra", Password: "secret123", Role: models.RoleCook})
	requireStatus(t, err, http.StatusConflict)
}

func TestSetRoleAndStatus(t *testing.T) {
	f := setupFixture(t)
	users := NewUserService(f.db)
	ctx := context.Background()

	user, err := users.SetRole(ctx, f.actor(f.manager), f.cook.ID, models.RoleCashier)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCashier, user.Role)

	_, err = users.SetRole(ctx, f.actor(f.manager), f.cook.ID, "chef")
	requireStatus(t, err, http.StatusBadRequest)
	_, err = users.SetRole(ctx, f.actor(f.manager), f.manager.ID, models.RoleCook)
	requireStatus(t, err, http.StatusBadRequest)

	user, err = users.SetStatus(ctx, f.actor(f.manager), f.cook.ID, models.UserDisabled)
	require.NoError(t, err)
	assert.Equal(t, models.UserDisabled, user.Status)

	_, err = users.SetStatus(ctx, f.actor(f.manager), f.cook.ID, "gone")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = NewAuthService(f.db).Authenticate(ctx, "cook", "secret123")
	requireStatus(t, err, http.StatusForbidden)
}

func TestManagerCannotReachOtherTenant(t *testing.T) {
	f := setupFixture(t)
	other := models.Restaurant{Name: "Autre", ShortCode: "OTHER", Plan: "free", Status: models.RestaurantActive}
	require.NoError(t, f.db.Create(&other).Error)
	oid := other.ID
	stranger := createUser(t, f.db, "stranger", models.RoleCook, &oid)

	users := NewUserService(f.db)
	_, err := users.SetStatus(context.Background(), f.actor(f.manager), stranger.ID, models.UserDisabled)
	requireStatus(t, err, http.StatusNotFound)

	list, err := users.List(context.Background(), f.actor(f.manager), 0)
	require.NoError(t, err)
	for _, u := range list {
		assert.Equal(t, f.restaurant.ID, *u.RestaurantID)
	}
}
