// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("gender", validateGender)
		_ = v.RegisterValidation("access_level", validateAccessLevel)
	}
}

func validateGender(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "woman", "man":
		return true
	}
	return false
}

func validateAccessLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "user", "admin":
		return true
	}
	return false
}
