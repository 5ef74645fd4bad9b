package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

var ErrInvalidID = errors.New("identifiant invalide")

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := cast.ToUintE(c.Param(name))
	if err != nil || id == 0 {
		return 0, BadRequest(ErrInvalidID.Error())
	}
	return id, nil
}
