package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boletamaster/internal/shared/config"
	"boletamaster/internal/shared/middleware"
	"boletamaster/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testJWT = config.JWTConfig{
	Secret:           "test-secret",
	JWTExpiresIn:     15 * time.Minute,
	RefreshExpiresIn: time.Hour,
}

func newTestService(t *testing.T) Service {
	t.Helper()
	dir := users.NewService(users.NewMemoryRepository(), users.WithHashCost(bcrypt.MinCost))
	return NewService(dir, testJWT)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{Login: "ana", Password: "secret1", Role: "organizer"})
	require.NoError(t, err)
	assert.Equal(t, "ana", resp.User.Login)
	assert.Equal(t, "ORGANIZER", resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Login)
	assert.Equal(t, "ORGANIZER", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)

	_, err = svc.Register(ctx, &RegisterRequest{Login: "ana", Password: "secret1"})
	assert.ErrorIs(t, err, users.ErrUserExists)

	_, err = svc.Login(ctx, &LoginRequest{Login: "ana", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginRequest{Login: "ghost", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, err := svc.Login(ctx, &LoginRequest{Login: "ana", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ORGANIZER", logged.User.Role)
}

func TestRegister_DefaultsToBuyerAndRefusesAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{Login: "bob", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, string(users.RoleBuyer), resp.User.Role)

	_, err = svc.Register(ctx, &RegisterRequest{Login: "eve", Password: "secret1", Role: "ADMIN"})
	assert.ErrorIs(t, err, users.ErrInvalidRole)
}

func TestRefreshToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{Login: "ana", Password: "secret1"})
	require.NoError(t, err)

	pair, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.RefreshToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		Login: "ana",
		Role:  "ADMIN",
		Type:  TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.RefreshToken(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken_Expired(t *testing.T) {
	dir := users.NewService(users.NewMemoryRepository(), users.WithHashCost(bcrypt.MinCost))
	s := &service{users: dir, config: testJWT, now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}

	_, err := dir.Register(context.Background(), users.RegisterInput{Login: "ana", Password: "secret1", Role: users.RoleBuyer})
	require.NoError(t, err)
	pair, err := s.generateTokenPair("ana", "BUYER")
	require.NoError(t, err)

	_, err = s.RefreshToken(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenPassesMiddleware(t *testing.T) {
	svc := newTestService(t)
	resp, err := svc.Register(context.Background(), &RegisterRequest{Login: "ana", Password: "secret1"})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{JWT: testJWT}
	SetupAuthRoutes(r.Group("/api/v1"), NewController(svc), middleware.JWTAuthWithConfig(cfg))

	call := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call(resp.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, call(resp.RefreshToken))
	assert.Equal(t, http.StatusUnauthorized, call(""))
}
