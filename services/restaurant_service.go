package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const restaurantNotFound = "Restaurant introuvable"

var shortCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,10}$`)

type RestaurantService struct {
	DB *gorm.DB
}

func NewRestaurantService(db *gorm.DB) *RestaurantService {
	return &RestaurantService{DB: db}
}

type CreateRestaurantInput struct {
	Name            string  `json:"name" mapstructure:"name"`
	ShortCode       string  `json:"short_code" mapstructure:"short_code"`
	Plan            string  `json:"plan" mapstructure:"plan"`
	Address         string  `json:"address" mapstructure:"address"`
	Phone           string  `json:"phone" mapstructure:"phone"`
	TaxRate         float64 `json:"tax_rate" mapstructure:"tax_rate"`
	PrinterAddr     string  `json:"printer_addr" mapstructure:"printer_addr"`
	ManagerUsername string  `json:"manager_username" mapstructure:"manager_username"`
	ManagerPassword string  `json:"manager_password" mapstructure:"manager_password"`
	ManagerFullName string  `json:"manager_full_name" mapstructure:"manager_full_name"`
}

type UpdateRestaurantInput struct {
	Name        *string  `json:"name" mapstructure:"name"`
	Plan        *string  `json:"plan" mapstructure:"plan"`
	Address     *string  `json:"address" mapstructure:"address"`
	Phone       *string  `json:"phone" mapstructure:"phone"`
	TaxRate     *float64 `json:"tax_rate" mapstructure:"tax_rate"`
	PrinterAddr *string  `json:"printer_addr" mapstructure:"printer_addr"`
}

// NormalizeShortCode upper-cases and trims a join code.
func NormalizeShortCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create opens a new tenant together with its first manager account.
func (s *RestaurantService) Create(ctx context.Context, in CreateRestaurantInput) (*models.Restaurant, *models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, utils.BadRequest("le nom du restaurant est requis")
	}
	code := NormalizeShortCode(in.ShortCode)
	if !shortCodePattern.MatchString(code) {
		return nil, nil, utils.BadRequest("code court invalide (3 à 10 lettres ou chiffres)")
	}
	if in.TaxRate < 0 || in.TaxRate > 100 {
		return nil, nil, utils.BadRequest("taux de TVA invalide")
	}
	planCode := strings.TrimSpace(in.Plan)
	if planCode == "" {
		planCode = "free"
	}

	restaurant := models.Restaurant{
		Name:            name,
		ShortCode:       code,
		Plan:            planCode,
		Status:          models.RestaurantActive,
		AcceptingOrders: true,
		Address:         strings.TrimSpace(in.Address),
		Phone:           strings.TrimSpace(in.Phone),
		TaxRate:         in.TaxRate,
		PrinterAddr:     strings.TrimSpace(in.PrinterAddr),
	}
	var manager *models.User

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireActivePlan(tx, planCode); err != nil {
			return err
		}
		var taken int64
		if err := tx.Model(&models.Restaurant{}).Where("short_code = ?", code).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return utils.Duplicate("ce code court est déjà utilisé")
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		if strings.TrimSpace(in.ManagerUsername) == "" {
			return nil
		}
		user, err := newAccount(tx, in.ManagerUsername, in.ManagerPassword, in.ManagerFullName, models.RoleManager)
		if err != nil {
			return err
		}
		user.RestaurantID = &restaurant.ID
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		manager = user
		return nil
	})
	if err != nil {
		return nil, nil, utils.FromDB(err, restaurantNotFound)
	}

	utils.InfoLogger.WithField("short_code", code).Info("restaurant created")
	return &restaurant, manager, nil
}

func (s *RestaurantService) List(ctx context.Context, status string) ([]models.Restaurant, error) {
	query := s.DB.WithContext(ctx)
	if status != "" {
		if status != models.RestaurantActive && status != models.RestaurantSuspended {
			return nil, utils.BadRequest("statut de restaurant invalide")
		}
		query = query.Where("status = ?", status)
	}
	var restaurants []models.Restaurant
	if err := query.Order("name ASC").Find(&restaurants).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return restaurants, nil
}

func (s *RestaurantService) Get(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.DB.WithContext(ctx).First(&restaurant, id).Error; err != nil {
		return nil, utils.FromDB(err, restaurantNotFound)
	}
	return &restaurant, nil
}

func (s *RestaurantService) Update(ctx context.Context, id uint, in UpdateRestaurantInput) (*models.Restaurant, error) {
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.BadRequest("le nom du restaurant est requis")
		}
		restaurant.Name = name
	}
	if in.Plan != nil {
		if err := requireActivePlan(s.DB.WithContext(ctx), *in.Plan); err != nil {
			return nil, err
		}
		restaurant.Plan = *in.Plan
	}
	if in.Address != nil {
		restaurant.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		restaurant.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.TaxRate != nil {
		if *in.TaxRate < 0 || *in.TaxRate > 100 {
			return nil, utils.BadRequest("taux de TVA invalide")
		}
		restaurant.TaxRate = *in.TaxRate
	}
	if in.PrinterAddr != nil {
		restaurant.PrinterAddr = strings.TrimSpace(*in.PrinterAddr)
	}
	if err := s.DB.WithContext(ctx).Save(restaurant).Error; err != nil {
		return nil, utils.FromDB(err, restaurantNotFound)
	}
	return restaurant, nil
}

// SetSuspended suspends or reactivates a tenant. Suspended tenants cannot
// log staff in nor receive orders.
func (s *RestaurantService) SetSuspended(ctx context.Context, id uint, suspended bool) (*models.Restaurant, error) {
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	status := models.RestaurantActive
	if suspended {
		status = models.RestaurantSuspended
	}
	if err := s.DB.WithContext(ctx).Model(restaurant).Update("status", status).Error; err != nil {
		return nil, utils.Internal(err)
	}
	restaurant.Status = status
	utils.InfoLogger.WithField("restaurant_id", id).Infof("restaurant status set to %s", status)
	return restaurant, nil
}

func (s *RestaurantService) SetAcceptingOrders(ctx context.Context, id uint, accepting bool) (*models.Restaurant, error) {
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(restaurant).Update("accepting_orders", accepting).Error; err != nil {
		return nil, utils.Internal(err)
	}
	restaurant.AcceptingOrders = accepting
	return restaurant, nil
}

func requireActivePlan(tx *gorm.DB, code string) error {
	var plan models.Plan
	if err := tx.First(&plan, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BadRequest("forfait inconnu: " + code)
		}
		return err
	}
	if !plan.Active {
		return utils.BadRequest("forfait inactif: " + code)
	}
	return nil
}
