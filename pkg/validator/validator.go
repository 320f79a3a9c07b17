package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator with the project's custom tags registered
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("call_cid", validateCallCID)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// validateCallCID accepts "<call type>:<call id>" with both parts non-empty
func validateCallCID(fl validator.FieldLevel) bool {
	callType, callID, ok := strings.Cut(fl.Field().String(), ":")
	return ok && callType != "" && callID != ""
}
