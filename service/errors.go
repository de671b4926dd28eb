package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arm32x/bobux-economy/models"
)

// ErrDuplicate is returned by repositories when a unique key already exists
var ErrDuplicate = errors.New("duplicate key")

// ErrForbidden is returned by platform adapters when the bot lacks a permission
var ErrForbidden = errors.New("missing platform permission")

// userFacing is implemented by errors whose message can be shown to the member who caused them
type userFacing interface {
	error
	UserMessage() string
	HTTPStatus() int
}

// UserMessage returns the message of the first user-facing error in err's chain
func UserMessage(err error) (string, bool) {
	var uf userFacing
	if errors.As(err, &uf) {
		return uf.UserMessage(), true
	}
	return "", false
}

// HTTPStatus returns the status code for err, or 500 for internal errors
func HTTPStatus(err error) int {
	var uf userFacing
	if errors.As(err, &uf) {
		return uf.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ErrorType names the first user-facing error in err's chain, or "InternalError"
func ErrorType(err error) string {
	var uf userFacing
	if errors.As(err, &uf) {
		return strings.TrimPrefix(fmt.Sprintf("%T", uf), "*service.")
	}
	return "InternalError"
}

// InsufficientFundsError is returned when a debit would leave a balance negative
type InsufficientFundsError struct {
	Shortfall models.Bobux
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("Insufficient funds (need an additional %s).", e.Shortfall)
}

func (e *InsufficientFundsError) UserMessage() string { return e.Error() }
func (e *InsufficientFundsError) HTTPStatus() int    { return http.StatusBadRequest }

// NegativeAmountError is returned for transactions with a negative amount
type NegativeAmountError struct{}

func (e *NegativeAmountError) Error() string {
	return "Negative transaction amounts are not allowed."
}

func (e *NegativeAmountError) UserMessage() string { return e.Error() }
func (e *NegativeAmountError) HTTPStatus() int    { return http.StatusBadRequest }

// SubscriptionNotFoundError is returned when a role has no subscription
type SubscriptionNotFoundError struct {
	RoleID int64
}

func (e *SubscriptionNotFoundError) Error() string {
	return fmt.Sprintf("Subscription for role <@&%d> does not exist.", e.RoleID)
}

func (e *SubscriptionNotFoundError) UserMessage() string { return e.Error() }
func (e *SubscriptionNotFoundError) HTTPStatus() int    { return http.StatusNotFound }

// AlreadySubscribedError is returned when subscribing twice
type AlreadySubscribedError struct {
	RoleID int64
}

func (e *AlreadySubscribedError) Error() string {
	return fmt.Sprintf("You are already subscribed to <@&%d>.", e.RoleID)
}

func (e *AlreadySubscribedError) UserMessage() string { return e.Error() }
func (e *AlreadySubscribedError) HTTPStatus() int    { return http.StatusConflict }

// NotSubscribedError is returned when unsubscribing from a role the member does not pay for
type NotSubscribedError struct {
	RoleID int64
}

func (e *NotSubscribedError) Error() string {
	return fmt.Sprintf("You are not subscribed to <@&%d>.", e.RoleID)
}

func (e *NotSubscribedError) UserMessage() string { return e.Error() }
func (e *NotSubscribedError) HTTPStatus() int    { return http.StatusNotFound }

// SubscriptionExistsError is returned when creating a subscription for a role that has one
type SubscriptionExistsError struct {
	RoleID int64
}

func (e *SubscriptionExistsError) Error() string {
	return fmt.Sprintf("A subscription for role <@&%d> already exists.", e.RoleID)
}

func (e *SubscriptionExistsError) UserMessage() string { return e.Error() }
func (e *SubscriptionExistsError) HTTPStatus() int    { return http.StatusConflict }

// UserError is a generic failure the member can act on
type UserError struct {
	Message string
	Status  int
}

// NewUserError creates a user error with a 400 status
func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...), Status: http.StatusBadRequest}
}

// NewPermissionError creates a user error with a 403 status
func NewPermissionError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...), Status: http.StatusForbidden}
}

// NewBotPermissionError creates a user error for a permission the bot is missing
func NewBotPermissionError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...), Status: http.StatusInternalServerError}
}

// NewNotConfiguredError creates a user error with a 501 status
func NewNotConfiguredError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...), Status: http.StatusNotImplemented}
}

func (e *UserError) Error() string       { return e.Message }
func (e *UserError) UserMessage() string { return e.Message }

func (e *UserError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}
