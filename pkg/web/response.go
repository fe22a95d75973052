// Package web defines common components for a web application.
package web

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/go-divvy/divvy/pkg/currencypkg"
)

// Response holds the common response envelope for all APIs.
type Response struct {
	AccessToken           string     `json:"access_token,omitempty"`
	AccessTokenExpiresAt  *time.Time `json:"access_token_expires_at,omitempty"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	Data                  any        `json:"data,omitempty"`
	Error                 string     `json:"error,omitempty"`
}

// Error wraps a given err into the common response envelope.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable message for the first binding error.
func GetErrorMsg(ve validator.ValidationErrors) string {
	field := ve[0]

	switch field.Tag() {
	case "required":
		return field.Field() + " is required"
	case "email":
		return field.Field() + " must be a valid email address"
	case "min":
		return field.Field() + " must be at least " + field.Param()
	case "max":
		return field.Field() + " must be at most " + field.Param()
	case "oneof":
		return field.Field() + " must be one of " + field.Param()
	case "currency":
		return field.Field() + " must be one of " + strings.Join(currencypkg.SupportedCurrencies, " ")
	case "category":
		return field.Field() + " must be a known expense category"
	}

	return field.Field() + " is invalid"
}
