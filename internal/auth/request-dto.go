package auth

// registration request payload; admins are provisioned by the seeder only
type RegisterRequest struct {
	Login       string `json:"login" validate:"required,min=3,max=100"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"max=200"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=BUYER ORGANIZER buyer organizer"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
