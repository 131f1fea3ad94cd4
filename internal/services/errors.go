package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrTransaction  = errors.New("transaction failed")

	// ErrEmptyCart is a user-facing rejection, not a fault.
	ErrEmptyCart = errors.New("your cart is empty")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound maps gorm's missing-record error onto ErrNotFound and passes any
// other error through unchanged.
func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

// duplicate reports a unique-index violation as a validation failure.
func duplicate(what string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return validationError("%s already exists", what)
	}
	return err
}

// transactionError keeps validation and lookup failures as they are and
// reports anything else raised inside a transaction as ErrTransaction.
func transactionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyCart) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransaction, err)
}
