package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

//go:embed plans.yaml
var planCatalog []byte

const planNotFound = "Forfait introuvable"

// LoadPlanCatalog parses the built-in subscription plans.
func LoadPlanCatalog() ([]models.Plan, error) {
	var doc struct {
		Plans []models.Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(planCatalog, &doc); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	return doc.Plans, nil
}

// SeedPlans inserts catalog plans that are not in the database yet.
// Existing rows keep whatever a super admin changed.
func SeedPlans(db *gorm.DB) error {
	plans, err := LoadPlanCatalog()
	if err != nil {
		return err
	}
	for _, p := range plans {
		plan := p
		if err := db.Where(models.Plan{Code: plan.Code}).FirstOrCreate(&plan).Error; err != nil {
			return fmt.Errorf("seed plan %s: %w", plan.Code, err)
		}
	}
	return nil
}

type PlanService struct {
	DB *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{DB: db}
}

type PlanInput struct {
	Code         string   `json:"code" mapstructure:"code"`
	Name         string   `json:"name" mapstructure:"name"`
	MonthlyPrice *float64 `json:"monthly_price" mapstructure:"monthly_price"`
	MaxStaff     *int     `json:"max_staff" mapstructure:"max_staff"`
	MaxMenuItems *int     `json:"max_menu_items" mapstructure:"max_menu_items"`
	Active       *bool    `json:"active" mapstructure:"active"`
}

func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := s.DB.WithContext(ctx).Order("monthly_price ASC").Find(&plans).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return plans, nil
}

func (s *PlanService) Get(ctx context.Context, code string) (*models.Plan, error) {
	var plan models.Plan
	if err := s.DB.WithContext(ctx).First(&plan, "code = ?", code).Error; err != nil {
		return nil, utils.FromDB(err, planNotFound)
	}
	return &plan, nil
}

func (s *PlanService) Create(ctx context.Context, in PlanInput) (*models.Plan, error) {
	code := strings.ToLower(strings.TrimSpace(in.Code))
	if code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, utils.BadRequest("code et nom du forfait requis")
	}
	plan := models.Plan{Code: code, Name: strings.TrimSpace(in.Name), Active: true}
	if err := applyPlanInput(&plan, in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Plan{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, utils.Internal(err)
	}
	if count > 0 {
		return nil, utils.Duplicate("ce forfait existe déjà")
	}
	if err := s.DB.WithContext(ctx).Create(&plan).Error; err != nil {
		return nil, utils.FromDB(err, planNotFound)
	}
	return &plan, nil
}

func (s *PlanService) Update(ctx context.Context, code string, in PlanInput) (*models.Plan, error) {
	plan, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		plan.Name = name
	}
	if err := applyPlanInput(plan, in); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(plan).Error; err != nil {
		return nil, utils.FromDB(err, planNotFound)
	}
	return plan, nil
}

func applyPlanInput(plan *models.Plan, in PlanInput) error {
	if in.MonthlyPrice != nil {
		if *in.MonthlyPrice < 0 {
			return utils.BadRequest("le prix du forfait doit être positif")
		}
		plan.MonthlyPrice = *in.MonthlyPrice
	}
	if in.MaxStaff != nil {
		if *in.MaxStaff < 0 {
			return utils.BadRequest("limite de personnel invalide")
		}
		plan.MaxStaff = *in.MaxStaff
	}
	if in.MaxMenuItems != nil {
		if *in.MaxMenuItems < 0 {
			return utils.BadRequest("limite d'articles invalide")
		}
		plan.MaxMenuItems = *in.MaxMenuItems
	}
	if in.Active != nil {
		plan.Active = *in.Active
	}
	return nil
}

// planOf loads the plan of a restaurant. A missing plan row means no limits.
func planOf(tx *gorm.DB, restaurantID uint) (*models.Plan, error) {
	var restaurant models.Restaurant
	if err := tx.Select("id", "plan").First(&restaurant, restaurantID).Error; err != nil {
		return nil, utils.FromDB(err, restaurantNotFound)
	}
	var plan models.Plan
	err := tx.First(&plan, "code = ?", restaurant.Plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Plan{Code: restaurant.Plan}, nil
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return &plan, nil
}
