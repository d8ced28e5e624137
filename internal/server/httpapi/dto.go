package httpapi

import (
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterRequest is the register payload. The password rule is enforced by
// the custom "password" validator below.
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=50"`
	LastName  string `json:"last_name" binding:"required,min=2,max=50"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,password"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the opaque refresh token value for both refresh and
// logout. The value is optional at binding time; the missing case maps to
// its own error downstream.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// validPassword requires at least 10 characters with an upper-case letter, a
// lower-case letter, a digit, and a special character.
func validPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 10 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

// RegisterValidators installs the custom binding rules on gin's validator
// engine. Call once before building the router.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("password", validPassword)
}
