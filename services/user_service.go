package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

const (
	userNotFound      = "Utilisateur introuvable"
	minPasswordLength = 6
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type CreateUserInput struct {
	Username     string `json:"username" mapstructure:"username"`
	Password     string `json:"password" mapstructure:"password"`
	FullName     string `json:"full_name" mapstructure:"full_name"`
	Role         string `json:"role" mapstructure:"role"`
	RestaurantID uint   `json:"restaurant_id" mapstructure:"restaurant_id"`
}

type UpdateUserInput struct {
	FullName *string `json:"full_name" mapstructure:"full_name"`
	Password *string `json:"password" mapstructure:"password"`
}

// newAccount validates credentials and returns an unsaved user.
func newAccount(tx *gorm.DB, username, password, fullName, role string) (*models.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, utils.BadRequest("nom d'utilisateur requis")
	}
	if len(password) < minPasswordLength {
		return nil, utils.BadRequest("le mot de passe doit contenir au moins 6 caractères")
	}
	var taken int64
	if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, utils.Duplicate("ce nom d'utilisateur est déjà pris")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		Status:       models.UserActive,
	}, nil
}

// List returns the staff of the caller's tenant. Super admins see every
// account, optionally narrowed to one restaurant.
func (s *UserService) List(ctx context.Context, actor Actor, restaurantID uint) ([]models.User, error) {
	query := s.DB.WithContext(ctx)
	switch {
	case actor.IsSuperAdmin():
		if restaurantID != 0 {
			query = query.Where("restaurant_id = ?", restaurantID)
		}
	case actor.Role == models.RoleManager:
		tenant, err := actor.Tenant()
		if err != nil {
			return nil, err
		}
		query = query.Where("restaurant_id = ?", tenant)
	default:
		return nil, errForbidden
	}
	var users []models.User
	if err := query.Order("role ASC").Order("username ASC").Find(&users).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return users, nil
}

// Create adds a staff account. Managers create staff for their own tenant;
// super admins pick the restaurant.
func (s *UserService) Create(ctx context.Context, actor Actor, in CreateUserInput) (*models.User, error) {
	role := strings.TrimSpace(in.Role)
	var tenant uint
	switch {
	case actor.IsSuperAdmin():
		if role == models.RoleSuperAdmin {
			break
		}
		if !models.IsStaffRole(role) {
			return nil, utils.BadRequest("rôle invalide")
		}
		if in.RestaurantID == 0 {
			return nil, utils.BadRequest("restaurant requis pour un compte du personnel")
		}
		tenant = in.RestaurantID
	case actor.Role == models.RoleManager:
		if !models.IsStaffRole(role) {
			return nil, utils.BadRequest("rôle invalide")
		}
		t, err := actor.Tenant()
		if err != nil {
			return nil, err
		}
		tenant = t
	default:
		return nil, errForbidden
	}

	var user *models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tenant != 0 {
			plan, err := planOf(tx, tenant)
			if err != nil {
				return err
			}
			if plan.MaxStaff > 0 {
				var count int64
				if err := tx.Model(&models.User{}).
					Where("restaurant_id = ? AND role IN ?", tenant, []string{models.RoleManager, models.RoleCashier, models.RoleCook}).
					Count(&count).Error; err != nil {
					return err
				}
				if count >= int64(plan.MaxStaff) {
					return utils.Conflict("limite de personnel du forfait atteinte")
				}
			}
		}
		u, err := newAccount(tx, in.Username, in.Password, in.FullName, role)
		if err != nil {
			return err
		}
		if tenant != 0 {
			u.RestaurantID = &tenant
		}
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, utils.FromDB(err, userNotFound)
	}
	return user, nil
}

// find loads a user the caller may administer.
func (s *UserService) find(ctx context.Context, actor Actor, id uint) (*models.User, error) {
	query := s.DB.WithContext(ctx)
	switch {
	case actor.IsSuperAdmin():
	case actor.Role == models.RoleManager:
		tenant, err := actor.Tenant()
		if err != nil {
			return nil, err
		}
		query = query.Where("restaurant_id = ?", tenant)
	default:
		return nil, errForbidden
	}
	var user models.User
	if err := query.First(&user, id).Error; err != nil {
		return nil, utils.FromDB(err, userNotFound)
	}
	if actor.Role == models.RoleManager && user.Role == models.RoleSuperAdmin {
		return nil, utils.NotFound(userNotFound)
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, actor Actor, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, utils.BadRequest("le mot de passe doit contenir au moins 6 caractères")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, utils.Internal(err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return nil, utils.FromDB(err, userNotFound)
	}
	return user, nil
}

func (s *UserService) SetRole(ctx context.Context, actor Actor, id uint, role string) (*models.User, error) {
	if !models.IsValidRole(role) || role == models.RoleClient {
		return nil, utils.BadRequest("rôle invalide")
	}
	if role == models.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return nil, errForbidden
	}
	if id == actor.UserID {
		return nil, utils.BadRequest("vous ne pouvez pas modifier votre propre rôle")
	}
	user, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleClient {
		return nil, utils.BadRequest("le rôle d'un client ne peut pas être modifié")
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, utils.Internal(err)
	}
	user.Role = role
	return user, nil
}

func (s *UserService) SetStatus(ctx context.Context, actor Actor, id uint, status string) (*models.User, error) {
	if status != models.UserActive && status != models.UserDisabled {
		return nil, utils.BadRequest("statut d'utilisateur invalide")
	}
	if id == actor.UserID {
		return nil, utils.BadRequest("vous ne pouvez pas modifier votre propre statut")
	}
	user, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("status", status).Error; err != nil {
		return nil, utils.Internal(err)
	}
	user.Status = status
	return user, nil
}

// Delete removes an account that never placed an order. Accounts with
// orders are kept for history and must be disabled instead.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if id == actor.UserID {
		return utils.BadRequest("vous ne pouvez pas supprimer votre propre compte")
	}
	user, err := s.find(ctx, actor, id)
	if err != nil {
		return err
	}
	var orders int64
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&orders).Error; err != nil {
		return utils.Internal(err)
	}
	if orders > 0 {
		return utils.Conflict("Cet utilisateur a des commandes, désactivez-le à la place")
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Association("Restaurants").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if err != nil {
		return utils.FromDB(err, userNotFound)
	}
	return nil
}
