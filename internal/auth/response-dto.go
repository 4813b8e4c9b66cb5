package auth

import (
	"time"

	"boletamaster/internal/users"
)

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// represents user data in responses (without the password hash)
type UserResponse struct {
	Login       string    `json:"login"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u *users.User) UserResponse {
	return UserResponse{
		Login:       u.Login,
		Role:        string(u.Role),
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
