package services

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct tag validation and turns every failed field into a hint.
func validateInput(ctx context.Context, input interface{}) error {
	err := validate.StructCtx(ctx, input)
	if err == nil {
		return nil
	}

	wrapped := errors.Wrapf(ErrValidationFailed, "%v", err)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Param() != "" {
				wrapped = errors.WithHintf(wrapped, "%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
			} else {
				wrapped = errors.WithHintf(wrapped, "%s must satisfy %s", fe.Field(), fe.Tag())
			}
		}
	}
	return wrapped
}
