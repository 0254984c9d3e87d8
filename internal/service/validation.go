package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"bank-wallet/internal/errors"
)

// AmountPlaces is the number of fractional digits a transfer amount may carry.
const AmountPlaces = 2

// amountIntegerDigits matches the integer part of a NUMERIC(20,2) balance.
const amountIntegerDigits = 18

var maxAmount = decimal.New(1, amountIntegerDigits)

type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// Validate trims the fields and reports missing ones.
func (r *RegisterRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if r.Email == "" || r.Password == "" || r.Name == "" {
		return errors.NewAppError(errors.ValidationFailed, "Please enter a valid email address, password and username")
	}
	return nil
}

type LoginRequest struct {
	Email    string
	Password string
}

func (r *LoginRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" || r.Password == "" {
		return errors.NewAppError(errors.ValidationFailed, "Please enter a valid email address, password")
	}
	return nil
}

// ValidateAmount accepts strictly positive amounts below 10^18 with at most two
// decimal places. Exponent and coefficient size are checked before any
// arithmetic or formatting touches the amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	exp := amount.Exponent()
	if exp < -(AmountPlaces+amountIntegerDigits) || exp > amountIntegerDigits ||
		amount.Coefficient().BitLen() > 128 {
		return errAmountOutOfRange
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return errAmountOutOfRange
	}
	if !amount.Equal(amount.Truncate(AmountPlaces)) {
		return errors.NewAppErrorf(errors.InvalidAmount, "Amount supports at most %d decimal places", AmountPlaces)
	}
	return nil
}

var errAmountOutOfRange = errors.NewAppError(errors.InvalidAmount, "Amount is out of range")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
