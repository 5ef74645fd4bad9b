package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"

	"github.com/yeremiapane/restaurant-platform/middlewares"
	"github.com/yeremiapane/restaurant-platform/models"
	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

// callable is one remotely invokable function. Public functions run with
// a zero Actor.
type callable struct {
	public bool
	roles  []string
	run    func(ctx context.Context, actor services.Actor, data map[string]interface{}) (interface{}, error)
}

type callableError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FunctionsController serves POST /api/functions/:name with the
// {"data": ...} request and {"result": ...} reply envelope.
type FunctionsController struct {
	functions map[string]callable
}

func NewFunctionsController(svc *services.Services) *FunctionsController {
	fc := &FunctionsController{functions: map[string]callable{}}

	fc.functions["authenticateUser"] = callable{public: true, run: func(ctx context.Context, _ services.Actor, data map[string]interface{}) (interface{}, error) {
		var in struct {
			Username string `mapstructure:"username"`
			Password string `mapstructure:"password"`
		}
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Auth.Authenticate(ctx, in.Username, in.Password)
	}}

	fc.functions["signUpClient"] = callable{public: true, run: func(ctx context.Context, _ services.Actor, data map[string]interface{}) (interface{}, error) {
		var in services.SignUpInput
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Auth.SignUpClient(ctx, in)
	}}

	fc.functions["addRestaurantToUser"] = callable{roles: []string{models.RoleClient}, run: func(ctx context.Context, actor services.Actor, data map[string]interface{}) (interface{}, error) {
		var in struct {
			ShortCode string `mapstructure:"short_code"`
		}
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Auth.AddRestaurant(ctx, actor, in.ShortCode)
	}}

	fc.functions["setActiveRestaurant"] = callable{roles: []string{models.RoleClient}, run: func(ctx context.Context, actor services.Actor, data map[string]interface{}) (interface{}, error) {
		var in struct {
			RestaurantID uint `mapstructure:"restaurant_id"`
		}
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Auth.SetActiveRestaurant(ctx, actor, in.RestaurantID)
	}}

	fc.functions["createRestaurant"] = callable{roles: []string{models.RoleSuperAdmin}, run: func(ctx context.Context, _ services.Actor, data map[string]interface{}) (interface{}, error) {
		var in services.CreateRestaurantInput
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		restaurant, manager, err := svc.Restaurants.Create(ctx, in)
		if err != nil {
			return nil, err
		}
		return gin.H{"restaurant": restaurant, "manager": manager}, nil
	}}

	fc.functions["listRestaurants"] = callable{roles: []string{models.RoleSuperAdmin}, run: func(ctx context.Context, _ services.Actor, data map[string]interface{}) (interface{}, error) {
		var in struct {
			Status string `mapstructure:"status"`
		}
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Restaurants.List(ctx, in.Status)
	}}

	fc.functions["suspendRestaurant"] = callable{roles: []string{models.RoleSuperAdmin}, run: func(ctx context.Context, _ services.Actor, data map[string]interface{}) (interface{}, error) {
		in := struct {
			RestaurantID uint `mapstructure:"restaurant_id"`
			Suspended    bool `mapstructure:"suspended"`
		}{Suspended: true}
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Restaurants.SetSuspended(ctx, in.RestaurantID, in.Suspended)
	}}

	fc.functions["updateRestaurant"] = callable{roles: []string{models.RoleSuperAdmin}, run: func(ctx context.Context, _ services.Actor, data map[string]interface{}) (interface{}, error) {
		var in struct {
			RestaurantID                   uint `mapstructure:"restaurant_id"`
			services.UpdateRestaurantInput `mapstructure:",squash"`
		}
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Restaurants.Update(ctx, in.RestaurantID, in.UpdateRestaurantInput)
	}}

	fc.functions["createUser"] = callable{roles: []string{models.RoleSuperAdmin, models.RoleManager}, run: func(ctx context.Context, actor services.Actor, data map[string]interface{}) (interface{}, error) {
		var in services.CreateUserInput
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Users.Create(ctx, actor, in)
	}}

	fc.functions["setUserRole"] = callable{roles: []string{models.RoleSuperAdmin, models.RoleManager}, run: func(ctx context.Context, actor services.Actor, data map[string]interface{}) (interface{}, error) {
		var in struct {
			UserID uint   `mapstructure:"user_id"`
			Role   string `mapstructure:"role"`
		}
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Users.SetRole(ctx, actor, in.UserID, in.Role)
	}}

	fc.functions["updateUserStatus"] = callable{roles: []string{models.RoleSuperAdmin, models.RoleManager}, run: func(ctx context.Context, actor services.Actor, data map[string]interface{}) (interface{}, error) {
		var in struct {
			UserID uint   `mapstructure:"user_id"`
			Status string `mapstructure:"status"`
		}
		if err := decode(data, &in); err != nil {
			return nil, err
		}
		return svc.Users.SetStatus(ctx, actor, in.UserID, in.Status)
	}}

	return fc
}

// decode maps the loosely typed payload onto in, so "12" and 12 both fill
// a numeric field.
func decode(data map[string]interface{}, in interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           in,
	})
	if err != nil {
		return utils.Internal(err)
	}
	if err := decoder.Decode(data); err != nil {
		return utils.BadRequest("arguments invalides")
	}
	return nil
}

func (fc *FunctionsController) Call(c *gin.Context) {
	fn, ok := fc.functions[c.Param("name")]
	if !ok {
		fc.fail(c, utils.NotFound("fonction inconnue"))
		return
	}

	var actor services.Actor
	if !fn.public {
		claims := middlewares.Claims(c)
		if claims == nil {
			fc.fail(c, utils.Unauthorized("authentification requise"))
			return
		}
		actor = services.ActorFromClaims(claims)
		if !hasRole(actor.Role, fn.roles) {
			fc.fail(c, utils.Forbidden("accès refusé pour ce rôle"))
			return
		}
	}

	var req struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fc.fail(c, utils.BadRequest("corps de requête invalide"))
		return
	}
	if req.Data == nil {
		req.Data = map[string]interface{}{}
	}

	result, err := fn.run(c.Request.Context(), actor, req.Data)
	if err != nil {
		fc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (fc *FunctionsController) fail(c *gin.Context, err error) {
	code := utils.StatusOf(err)
	message := utils.MsgInternal
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if code >= http.StatusInternalServerError {
		utils.ErrorLogger.WithField("function", c.Param("name")).Error(err)
	}
	c.JSON(code, gin.H{"error": callableError{Status: callableStatus(code, err), Message: message}})
}

func callableStatus(code int, err error) string {
	switch code {
	case http.StatusBadRequest:
		return "INVALID_ARGUMENT"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "PERMISSION_DENIED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		if errors.Is(err, utils.ErrAlreadyExists) {
			return "ALREADY_EXISTS"
		}
		return "FAILED_PRECONDITION"
	}
	return "INTERNAL"
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
