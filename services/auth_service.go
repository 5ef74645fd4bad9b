package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/utils"
)

var (
	errBadCredentials = utils.Unauthorized("Identifiants invalides")
	errDisabled       = utils.Forbidden("Compte désactivé")
	errStaleSession   = utils.Unauthorized("Session expirée, veuillez vous reconnecter")
)

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token      string             `json:"token"`
	User       models.User        `json:"user"`
	Restaurant *models.Restaurant `json:"restaurant,omitempty"`
}

type SignUpInput struct {
	Username  string `json:"username" mapstructure:"username"`
	Password  string `json:"password" mapstructure:"password"`
	FullName  string `json:"full_name" mapstructure:"full_name"`
	ShortCode string `json:"short_code" mapstructure:"short_code"`
}

// Authenticate checks credentials and issues a token bound to the user's
// active restaurant.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", normalizeUsername(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errBadCredentials
	}
	if user.Status != models.UserActive {
		return nil, errDisabled
	}
	return s.issue(ctx, &user)
}

// SignUpClient registers a client account and optionally joins a
// restaurant by its short code.
func (s *AuthService) SignUpClient(ctx context.Context, in SignUpInput) (*Session, error) {
	var user *models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := newAccount(tx, in.Username, in.Password, in.FullName, models.RoleClient)
		if err != nil {
			return err
		}
		var restaurant *models.Restaurant
		if in.ShortCode != "" {
			restaurant, err = joinable(tx, in.ShortCode)
			if err != nil {
				return err
			}
			u.RestaurantID = &restaurant.ID
		}
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if restaurant != nil {
			if err := tx.Model(u).Association("Restaurants").Append(restaurant); err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, utils.FromDB(err, userNotFound)
	}
	utils.InfoLogger.WithField("username", user.Username).Info("client signed up")
	return s.issue(ctx, user)
}

// AddRestaurant adds a restaurant to a client's list. The first restaurant
// a client joins becomes the active one.
func (s *AuthService) AddRestaurant(ctx context.Context, actor Actor, shortCode string) (*Session, error) {
	if !actor.IsClient() {
		return nil, utils.Forbidden("seuls les clients peuvent ajouter un restaurant")
	}
	user, err := s.loadUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	restaurant, err := joinable(s.DB.WithContext(ctx), shortCode)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !isMember(user, restaurant.ID) {
			if err := tx.Model(user).Association("Restaurants").Append(restaurant); err != nil {
				return err
			}
		}
		if user.RestaurantID == nil {
			user.RestaurantID = &restaurant.ID
			return tx.Model(user).Update("restaurant_id", restaurant.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, utils.FromDB(err, restaurantNotFound)
	}
	if user, err = s.loadUser(ctx, actor.UserID); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// SetActiveRestaurant switches the restaurant a client orders from and
// returns a token carrying it.
func (s *AuthService) SetActiveRestaurant(ctx context.Context, actor Actor, restaurantID uint) (*Session, error) {
	if !actor.IsClient() {
		return nil, utils.Forbidden("seuls les clients peuvent changer de restaurant")
	}
	user, err := s.loadUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !isMember(user, restaurantID) {
		return nil, utils.Forbidden("vous n'êtes pas inscrit dans ce restaurant")
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("restaurant_id", restaurantID).Error; err != nil {
		return nil, utils.Internal(err)
	}
	user.RestaurantID = &restaurantID
	return s.issue(ctx, user)
}

// CheckSession confirms that claims issued earlier still match the account:
// the user is active with the same role, staff still belong to an active
// restaurant and clients are still members of the restaurant they act on.
func (s *AuthService) CheckSession(ctx context.Context, userID uint, role string, restaurantID uint) error {
	db := s.DB.WithContext(ctx)
	var user models.User
	err := db.Select("id", "role", "status", "restaurant_id").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errStaleSession
	}
	if err != nil {
		return utils.Internal(err)
	}
	if user.Status != models.UserActive {
		return errDisabled
	}
	if user.Role != role {
		return errStaleSession
	}
	if restaurantID == 0 {
		if models.IsStaffRole(role) {
			return errStaleSession
		}
		return nil
	}

	if role == models.RoleClient {
		var n int64
		err := db.Table("user_restaurants").
			Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
			Count(&n).Error
		if err != nil {
			return utils.Internal(err)
		}
		if n == 0 {
			return errStaleSession
		}
		return nil
	}

	if user.RestaurantID == nil || *user.RestaurantID != restaurantID {
		return errStaleSession
	}
	var restaurant models.Restaurant
	if err := db.Select("id", "status").First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errStaleSession
		}
		return utils.Internal(err)
	}
	if !restaurant.IsActive() {
		return errSuspended
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	return s.loadUser(ctx, actor.UserID)
}

func (s *AuthService) loadUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Preload("Restaurants").First(&user, id).Error; err != nil {
		return nil, utils.FromDB(err, userNotFound)
	}
	return &user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	session := &Session{User: *user}
	var tenant uint
	if user.RestaurantID != nil {
		var restaurant models.Restaurant
		if err := s.DB.WithContext(ctx).First(&restaurant, *user.RestaurantID).Error; err != nil {
			return nil, utils.FromDB(err, restaurantNotFound)
		}
		if models.IsStaffRole(user.Role) && !restaurant.IsActive() {
			return nil, errSuspended
		}
		tenant = restaurant.ID
		session.Restaurant = &restaurant
	}
	token, err := utils.GenerateToken(user.ID, user.Role, tenant, user.DisplayName())
	if err != nil {
		return nil, utils.Internal(err)
	}
	session.Token = token
	return session, nil
}

func joinable(tx *gorm.DB, shortCode string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := tx.Where("short_code = ?", NormalizeShortCode(shortCode)).First(&restaurant).Error; err != nil {
		return nil, utils.FromDB(err, "Aucun restaurant avec ce code")
	}
	if !restaurant.IsActive() {
		return nil, errSuspended
	}
	return &restaurant, nil
}

func isMember(user *models.User, restaurantID uint) bool {
	for _, r := range user.Restaurants {
		if r.ID == restaurantID {
			return true
		}
	}
	return false
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
