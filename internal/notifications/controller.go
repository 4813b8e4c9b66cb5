package notifications

import (
	"net/http"
	"strconv"

	"boletamaster/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service ActivityService
}

func NewController(service ActivityService) *Controller {
	return &Controller{service: service}
}

// GetMyActivity godoc
// @Summary List the caller's marketplace activity, newest first
// @Tags activity
// @Security BearerAuth
// @Param limit query int false "Maximum records (default 50, max 200)"
// @Success 200 {object} response.StandardApiResponse
// @Router /activity [get]
func (c *Controller) GetMyActivity(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	records, err := c.service.ListActivity(ctx.Request.Context(), ctx.GetString("login"), limit)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Activity retrieved", records, nil)
}
