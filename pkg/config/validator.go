package config

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("output_format", validateOutputFormat)
}

func validateOutputFormat(fl validator.FieldLevel) bool {
	return slices.Contains(OutputFormats, fl.Field().String())
}
