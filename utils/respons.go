package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondFailure writes err with the status carried by an *AppError.
// Anything else is logged and hidden behind a generic 500.
func RespondFailure(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
			ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("%s: %v", appErr.Message, appErr.Err)
		}
		RespondError(c, appErr.Code, appErr)
		return
	}
	ErrorLogger.WithField("path", c.Request.URL.Path).Error(err)
	RespondError(c, http.StatusInternalServerError, errors.New(MsgInternal))
}
