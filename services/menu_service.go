package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/events"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const menuItemNotFound = "Article introuvable"

type MenuService struct {
	DB  *gorm.DB
	Bus *events.Bus
}

func NewMenuService(db *gorm.DB, bus *events.Bus) *MenuService {
	return &MenuService{DB: db, Bus: bus}
}

type MenuInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	IsAvailable *bool    `json:"is_available"`
}

// List returns the tenant menu. Clients only see what can be ordered.
func (s *MenuService) List(ctx context.Context, actor Actor, category string) ([]models.MenuItem, error) {
	tenant, err := actor.Tenant()
	if err != nil {
		return nil, err
	}
	query := s.DB.WithContext(ctx).Where("restaurant_id = ?", tenant)
	if actor.IsClient() {
		query = query.Where("is_available = ?", true)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var items []models.MenuItem
	if err := query.Order("category ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return items, nil
}

func (s *MenuService) Categories(ctx context.Context, actor Actor) ([]string, error) {
	tenant, err := actor.Tenant()
	if err != nil {
		return nil, err
	}
	var categories []string
	err = s.DB.WithContext(ctx).Model(&models.MenuItem{}).
		Where("restaurant_id = ? AND category <> ''", tenant).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, utils.Internal(err)
	}
	return categories, nil
}

func (s *MenuService) Get(ctx context.Context, actor Actor, id uint) (*models.MenuItem, error) {
	tenant, err := actor.Tenant()
	if err != nil {
		return nil, err
	}
	var item models.MenuItem
	if err := s.DB.WithContext(ctx).Where("restaurant_id = ?", tenant).First(&item, id).Error; err != nil {
		return nil, utils.FromDB(err, menuItemNotFound)
	}
	if actor.IsClient() && !item.IsAvailable {
		return nil, utils.NotFound(menuItemNotFound)
	}
	return &item, nil
}

func (s *MenuService) Create(ctx context.Context, actor Actor, in MenuInput) (*models.MenuItem, error) {
	tenant, err := actor.Tenant()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.BadRequest("le nom de l'article est requis")
	}
	if in.Price == nil || *in.Price < 0 {
		return nil, utils.BadRequest("prix invalide")
	}

	item := models.MenuItem{
		RestaurantID: tenant,
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		Price:        *in.Price,
		Category:     strings.TrimSpace(in.Category),
		IsAvailable:  true,
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := planOf(tx, tenant)
		if err != nil {
			return err
		}
		if plan.MaxMenuItems > 0 {
			var count int64
			if err := tx.Model(&models.MenuItem{}).Where("restaurant_id = ?", tenant).Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(plan.MaxMenuItems) {
				return utils.Conflict("limite d'articles du forfait atteinte")
			}
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, utils.FromDB(err, menuItemNotFound)
	}
	s.publish(item)
	return &item, nil
}

func (s *MenuService) Update(ctx context.Context, actor Actor, id uint, in MenuInput) (*models.MenuItem, error) {
	item, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		item.Name = name
	}
	if in.Description != "" {
		item.Description = strings.TrimSpace(in.Description)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, utils.BadRequest("prix invalide")
		}
		item.Price = *in.Price
	}
	if in.Category != "" {
		item.Category = strings.TrimSpace(in.Category)
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if err := s.DB.WithContext(ctx).Save(item).Error; err != nil {
		return nil, utils.FromDB(err, menuItemNotFound)
	}
	s.publish(*item)
	return item, nil
}

func (s *MenuService) SetAvailability(ctx context.Context, actor Actor, id uint, available bool) (*models.MenuItem, error) {
	item, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(item).Update("is_available", available).Error; err != nil {
		return nil, utils.Internal(err)
	}
	item.IsAvailable = available
	s.publish(*item)
	return item, nil
}

// Delete removes an item no order line points to. Referenced items must be
// made unavailable instead.
func (s *MenuService) Delete(ctx context.Context, actor Actor, id uint) error {
	item, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	var refs int64
	if err := s.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("menu_item_id = ?", item.ID).Count(&refs).Error; err != nil {
		return utils.Internal(err)
	}
	if refs > 0 {
		return utils.Conflict("Cet article est référencé par des commandes, rendez-le indisponible à la place")
	}
	if err := s.DB.WithContext(ctx).Delete(&models.MenuItem{}, item.ID).Error; err != nil {
		return utils.FromDB(err, menuItemNotFound)
	}
	s.Bus.Publish(events.Event{
		Type:         events.MenuUpdated,
		RestaurantID: item.RestaurantID,
		Data:         map[string]interface{}{"id": item.ID, "deleted": true},
	})
	return nil
}

func (s *MenuService) publish(item models.MenuItem) {
	s.Bus.Publish(events.Event{
		Type:         events.MenuUpdated,
		RestaurantID: item.RestaurantID,
		Data:         item,
	})
}
