package users

import (
	"net/http"

	"boletamaster/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Controller interface {
	GetWallet(c *gin.Context)
	Deposit(c *gin.Context)
}

type controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) Controller {
	return &controller{service: service, validator: validator.New()}
}

func (ctrl *controller) GetWallet(c *gin.Context) {
	login := c.GetString("login")
	balance, err := ctrl.service.GetBalance(c.Request.Context(), login)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Wallet retrieved", WalletResponse{
		Login:   login,
		Role:    Role(c.GetString("role")),
		Balance: balance,
	}, nil)
}

func (ctrl *controller) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}
	if err := ctrl.validator.Struct(req); err != nil {
		response.RespondValidation(c, err)
		return
	}

	login := c.GetString("login")
	balance, err := ctrl.service.Deposit(c.Request.Context(), login, decimal.RequireFromString(req.Amount))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Deposit accepted", WalletResponse{
		Login:   login,
		Role:    Role(c.GetString("role")),
		Balance: balance,
	}, nil)
}
