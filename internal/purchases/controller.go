package purchases

import (
	"net/http"

	"boletamaster/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetMyPurchases godoc
// @Summary List the caller's purchases, newest first
// @Tags purchases
// @Security BearerAuth
// @Param kind query string false "PRIMARY, RESALE, COUNTEROFFER or PREALLOCATION"
// @Success 200 {object} response.StandardApiResponse
// @Router /purchases [get]
func (c *Controller) GetMyPurchases(ctx *gin.Context) {
	list, err := c.service.ListPurchases(ctx.Request.Context(), ListQuery{
		BuyerLogin: ctx.GetString("login"),
		Kind:       Kind(ctx.Query("kind")),
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Purchases retrieved", list, nil)
}

func (c *Controller) GetPurchase(ctx *gin.Context) {
	p, err := c.service.GetPurchase(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("login"), ctx.GetString("role") == "ADMIN")
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Purchase retrieved", p, nil)
}

func (c *Controller) ListAll(ctx *gin.Context) {
	list, err := c.service.ListPurchases(ctx.Request.Context(), ListQuery{
		EventID: ctx.Query("event_id"),
		Kind:    Kind(ctx.Query("kind")),
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Purchases retrieved", list, nil)
}

func (c *Controller) ListRefunds(ctx *gin.Context) {
	list, err := c.service.ListRefunds(ctx.Request.Context(), ctx.Query("event_id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Refunds retrieved", list, nil)
}
