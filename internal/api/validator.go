package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/labstack/echo/v4"

	"github.com/braymix/panda/internal/domain/event"
)

// CustomValidator is the echo validator for request bodies.
// Field names in violations are the JSON names.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a CustomValidator with the project's tags registered
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String())
		return err == nil
	})
	return &CustomValidator{validator: v}
}

// Validate returns a 400 *echo.HTTPError listing every violated constraint
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	violations := make([]event.Violation, len(verrs))
	for i, fe := range verrs {
		violations[i] = event.Violation{Field: fe.Field(), Message: violationMessage(fe)}
	}
	return NewValidationHTTPError(violations)
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "timestamp":
		return "must be an ISO-8601 timestamp with offset, e.g. 2026-03-01T10:00:00+01:00"
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

// NewValidationHTTPError builds the 400 response for a list of violations
func NewValidationHTTPError(violations []event.Violation) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
		Error:      "validation failed",
		Code:       http.StatusBadRequest,
		Violations: violations,
	})
}
