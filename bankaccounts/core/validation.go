package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidateAccountID rejects the nil UUID.
func ValidateAccountID(accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return errors.Join(ErrValidation, errMissingAccountID)
	}

	return nil
}

// ValidateOwner checks the owner data of a new account. Whitespace-only values count as empty.
func ValidateOwner(fullName string, emailAddress string) error {
	if strings.TrimSpace(fullName) == "" {
		return errors.Join(ErrValidation, errEmptyFullName)
	}

	if strings.TrimSpace(emailAddress) == "" {
		return errors.Join(ErrValidation, errEmptyEmailAddress)
	}

	return nil
}

// ValidateAmount checks that a deposit, withdrawal or transfer amount is positive and fits into cents.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.Join(ErrValidation, errAmountNotPositive)
	}

	if !HasAtMostTwoDecimalPlaces(amount) {
		return errors.Join(ErrValidation, errTooManyDecimalPlaces)
	}

	return nil
}

// ValidateOverdraftLimit checks that a limit is not negative and fits into cents.
func ValidateOverdraftLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return errors.Join(ErrValidation, errNegativeOverdraft)
	}

	if !HasAtMostTwoDecimalPlaces(limit) {
		return errors.Join(ErrValidation, errTooManyDecimalPlaces)
	}

	return nil
}

// ValidateTransfer checks a transfer before any account is loaded.
func ValidateTransfer(command TransferFunds) error {
	if err := ValidateAccountID(command.DebitAccountID); err != nil {
		return err
	}

	if err := ValidateAccountID(command.CreditAccountID); err != nil {
		return err
	}

	if command.DebitAccountID == command.CreditAccountID {
		return errors.Join(ErrValidation, errSameAccountTransfer)
	}

	return ValidateAmount(command.Amount)
}
