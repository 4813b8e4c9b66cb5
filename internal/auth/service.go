package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"boletamaster/internal/shared/config"
	"boletamaster/internal/users"
	"boletamaster/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Directory is the slice of the user directory that auth needs
type Directory interface {
	Register(ctx context.Context, in users.RegisterInput) (*users.User, error)
	Get(ctx context.Context, login string) (*users.User, error)
	ValidateCredentials(ctx context.Context, login, password string) (bool, error)
}

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
	Me(ctx context.Context, login string) (*UserResponse, error)
}

type service struct {
	users  Directory
	config config.JWTConfig
	now    func() time.Time
}

func NewService(directory Directory, cfg config.JWTConfig) Service {
	return &service{
		users:  directory,
		config: cfg,
		now:    time.Now,
	}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	role := users.Role(strings.ToUpper(req.Role))
	if role == "" {
		role = users.RoleBuyer
	}
	if !role.HasWallet() {
		return nil, users.ErrInvalidRole
	}

	user, err := s.users.Register(ctx, users.RegisterInput{
		Login:       req.Login,
		Password:    req.Password,
		Role:        role,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.generateTokenPair(user.Login, string(user.Role))
	if err != nil {
		return nil, err
	}

	logger.GetDefault().InfoWithContext(ctx, "User registered", map[string]interface{}{
		"login": user.Login,
		"role":  string(user.Role),
	})
	return &AuthResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	ok, err := s.users.ValidateCredentials(ctx, req.Login, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.Get(ctx, req.Login)
	if err != nil {
		return nil, err
	}

	pair, err := s.generateTokenPair(user.Login, string(user.Role))
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogAuthSuccess(ctx, user.Login, "password")
	return &AuthResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	// the role is re-read so a changed account never refreshes stale claims
	user, err := s.users.Get(ctx, claims.Login)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return s.generateTokenPair(user.Login, string(user.Role))
}

func (s *service) Me(ctx context.Context, login string) (*UserResponse, error) {
	user, err := s.users.Get(ctx, login)
	if err != nil {
		return nil, err
	}
	out := toUserResponse(user)
	return &out, nil
}

func (s *service) generateTokenPair(login, role string) (*TokenPair, error) {
	access, err := s.sign(login, role, TokenTypeAccess, s.config.JWTExpiresIn)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(login, role, TokenTypeRefresh, s.config.RefreshExpiresIn)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.config.JWTExpiresIn.Seconds()),
	}, nil
}

func (s *service) sign(login, role, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := JWTClaims{
		Login: login,
		Role:  role,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "boletamaster",
			Subject:   login,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}

func (s *service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
