package httpapi

import (
	"time"

	"github.com/cheridanh/infradev/internal/server/models"
	"github.com/cheridanh/infradev/internal/server/services"
)

// APIResponse is the uniform success envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func newAPIResponse(message string, data any) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// AuthResponse is the payload returned by register, login, and refresh.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Role         string `json:"role,omitempty"`
}

func newAuthResponse(pair *services.TokenPair) AuthResponse {
	return AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		Email:        pair.User.Email,
		FirstName:    pair.User.FirstName,
		LastName:     pair.User.LastName,
		Role:         pair.User.Role,
	}
}

// UserResponse is the public projection of an account, without credentials.
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

// ErrorResponse is the uniform error body for every non-2xx answer.
type ErrorResponse struct {
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
}

func newErrorResponse(status int, errText, message, path string) ErrorResponse {
	return ErrorResponse{
		Status:    status,
		Error:     errText,
		Message:   message,
		Path:      path,
		Timestamp: time.Now().UTC(),
	}
}
