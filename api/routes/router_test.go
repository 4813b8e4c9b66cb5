package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boletamaster/internal/shared/config"
	"boletamaster/internal/shared/database"
	"boletamaster/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		APIVersion: "v1",
		APIPrefix:  "/api",
		Database:   config.DatabaseConfig{Backend: config.BackendMemory},
		JWT: config.JWTConfig{
			Secret:           "router-test",
			JWTExpiresIn:     time.Hour,
			RefreshExpiresIn: 24 * time.Hour,
		},
		Marketplace: config.MarketplaceConfig{
			DefaultServicePercent:    decimal.RequireFromString("0.10"),
			DefaultFixedFee:          decimal.NewFromInt(5),
			MaxTicketsPerTransaction: 10,
			LockBackend:              "memory",
		},
	}
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(memoryConfig(), &database.DB{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	engine := gin.New()
	r.SetupRoutes(engine)
	return engine
}

func call(engine http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, response.StandardApiResponse) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var out response.StandardApiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	engine := newTestEngine(t)

	w, _ := call(engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), config.BackendMemory)

	w, _ = call(engine, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(engine, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RegisterThenUseWallet(t *testing.T) {
	engine := newTestEngine(t)

	w, body := call(engine, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"login":    "ana",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)

	w, _ = call(engine, http.MethodGet, "/api/v1/wallet", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(engine, http.MethodPost, "/api/v1/wallet/deposit", token, map[string]string{"amount": "250"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body = call(engine, http.MethodGet, "/api/v1/wallet", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	wallet, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "250", wallet["balance"])

	w, _ = call(engine, http.MethodGet, "/api/v1/admin/fees", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_PublicCatalog(t *testing.T) {
	engine := newTestEngine(t)

	w, _ := call(engine, http.MethodGet, "/api/v1/events", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(engine, http.MethodGet, "/api/v1/marketplace/listings", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(engine, http.MethodGet, "/api/v1/venues", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewLocker_RedisNeedsClient(t *testing.T) {
	cfg := memoryConfig()
	cfg.Marketplace.LockBackend = "redis"
	_, err := NewRouter(cfg, &database.DB{})
	assert.Error(t, err)

	cfg.Marketplace.LockBackend = "zookeeper"
	_, err = NewRouter(cfg, &database.DB{})
	assert.Error(t, err)
}
