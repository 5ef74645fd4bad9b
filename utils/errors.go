package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const MsgInternal = "Erreur interne du serveur"

// ErrAlreadyExists marks conflicts caused by a duplicate key.
var ErrAlreadyExists = errors.New("already exists")

// AppError carries an HTTP status and the French message shown to the user.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func BadRequest(message string) *AppError   { return NewError(http.StatusBadRequest, message) }
func Unauthorized(message string) *AppError { return NewError(http.StatusUnauthorized, message) }
func Forbidden(message string) *AppError    { return NewError(http.StatusForbidden, message) }
func NotFound(message string) *AppError     { return NewError(http.StatusNotFound, message) }
func Conflict(message string) *AppError     { return NewError(http.StatusConflict, message) }

// Duplicate is a conflict on a value that must be unique.
func Duplicate(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrAlreadyExists}
}

func Internal(err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: MsgInternal, Err: err}
}

// StatusOf returns the HTTP status err maps to.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

const msgDuplicate = "Cette ressource existe déjà"

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// FromDB classifies a database error. notFound is the message used when
// the record does not exist.
func FromDB(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AppError{Code: http.StatusNotFound, Message: notFound, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &AppError{Code: http.StatusConflict, Message: msgDuplicate, Err: fmt.Errorf("%w: %w", ErrAlreadyExists, err)}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &AppError{Code: http.StatusConflict, Message: "Ressource encore référencée", Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &AppError{Code: http.StatusConflict, Message: msgDuplicate, Err: fmt.Errorf("%w: %w", ErrAlreadyExists, err)}
		case pgForeignKeyViolation:
			return &AppError{Code: http.StatusConflict, Message: "Ressource encore référencée", Err: err}
		}
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
