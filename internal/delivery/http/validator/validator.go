// Package validator binds go-playground/validator as the echo request validator.
package validator

import (
	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	domainerrors "storefront/internal/domain/errors"
)

type echoValidator struct {
	validate *playground.Validate
}

// New creates the echo.Validator used for request DTOs carrying
// `validate` tags.
func New() echo.Validator {
	return &echoValidator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator. Validation failures surface as
// the domain validation error so the central error handler renders the
// standard envelope.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
