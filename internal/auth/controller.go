package auth

import (
	"errors"
	"net/http"

	"boletamaster/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// Register godoc
// @Summary Register a buyer or organizer account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /auth/register [post]
func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondValidation(ctx, err)
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "User registered successfully", resp, nil)
}

// Login godoc
// @Summary Exchange credentials for a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.StandardApiResponse
// @Failure 401 {object} response.StandardApiResponse
// @Router /auth/login [post]
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondValidation(ctx, err)
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid login or password", nil, nil)
			return
		}
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Login successful", resp, nil)
}

// RefreshToken godoc
// @Summary Rotate a token pair using the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.StandardApiResponse
// @Failure 401 {object} response.StandardApiResponse
// @Router /auth/refresh [post]
func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondValidation(ctx, err)
		return
	}

	tokenPair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid or expired refresh token", nil, nil)
			return
		}
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Token refreshed successfully", tokenPair, nil)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	me, err := c.service.Me(ctx.Request.Context(), ctx.GetString("login"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "User data retrieved successfully", me, nil)
}
