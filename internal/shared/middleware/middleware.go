package middleware

import (
	"net/http"
	"strings"

	"boletamaster/internal/shared/config"
	"boletamaster/internal/shared/utils/response"
	"boletamaster/internal/users"
	"boletamaster/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Context keys set by the auth middleware
const (
	LoginKey     = "login"
	RoleKey      = "role"
	RequestIDKey = "request_id"
)

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		claims, ok := parseAccessToken(authHeader, cfg.JWT.Secret)
		if !ok {
			logger.GetDefault().LogAuthFailure(c.Request.Context(), "invalid token", c.ClientIP())
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		setPrincipal(c, claims)
		c.Next()
	}
}

func parseAccessToken(header, secret string) (jwt.MapClaims, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, false
	}
	return claims, true
}

func setPrincipal(c *gin.Context, claims jwt.MapClaims) {
	login, _ := claims["login"].(string)
	role, _ := claims["role"].(string)
	c.Set(LoginKey, login)
	c.Set(RoleKey, role)
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return RequireRoles(requiredRole)
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(string(users.RoleAdmin))
}

func RequireOrganizer() gin.HandlerFunc {
	return RequireRole(string(users.RoleOrganizer))
}

// RequireCustomer admits any role that owns a wallet
func RequireCustomer() gin.HandlerFunc {
	return RequireRoles(string(users.RoleBuyer), string(users.RoleOrganizer))
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(RoleKey)
		if userRole == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		for _, role := range requiredRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// RequestID propagates X-Request-ID or assigns a fresh one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
