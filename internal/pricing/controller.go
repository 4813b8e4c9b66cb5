package pricing

import (
	"net/http"

	"boletamaster/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Controller interface {
	GetFees(c *gin.Context)
	UpdateFees(c *gin.Context)
}

type controller struct {
	schedule  *FeeSchedule
	validator *validator.Validate
}

func NewController(schedule *FeeSchedule) Controller {
	return &controller{schedule: schedule, validator: validator.New()}
}

func (ctrl *controller) GetFees(c *gin.Context) {
	response.RespondJSON(c, "success", http.StatusOK, "Current fee schedule", ctrl.schedule.Current(), nil)
}

func (ctrl *controller) UpdateFees(c *gin.Context) {
	var req UpdateFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}
	if err := ctrl.validator.Struct(req); err != nil {
		response.RespondValidation(c, err)
		return
	}

	fees := Fees{
		ServicePercent: decimal.RequireFromString(req.ServicePercent),
		FixedFee:       decimal.RequireFromString(req.FixedFee),
	}
	if err := ctrl.schedule.Update(c.Request.Context(), fees, c.GetString("login")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Fee schedule updated", fees, nil)
}
