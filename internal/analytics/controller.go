package analytics

import (
	"net/http"

	"boletamaster/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetPlatformEarnings(c *gin.Context)
	GetEventEarnings(c *gin.Context)
	GetOrganizerEarnings(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetPlatformEarnings godoc
// @Summary Platform earnings from service and issuance fees
// @Tags analytics
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/analytics/earnings [get]
func (ctrl *controller) GetPlatformEarnings(c *gin.Context) {
	earnings, err := ctrl.service.PlatformEarnings(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Platform earnings retrieved successfully", earnings, nil)
}

// GetEventEarnings godoc
// @Summary Platform earnings for one event
// @Tags analytics
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /admin/analytics/earnings/events/{id} [get]
func (ctrl *controller) GetEventEarnings(c *gin.Context) {
	earnings, err := ctrl.service.PlatformEarningsByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Event earnings retrieved successfully", earnings, nil)
}

// GetOrganizerEarnings godoc
// @Summary Revenue and sell-through of the caller's events
// @Tags analytics
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Router /organizer/analytics/earnings [get]
func (ctrl *controller) GetOrganizerEarnings(c *gin.Context) {
	earnings, err := ctrl.service.OrganizerEarnings(c.Request.Context(), c.GetString("login"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Organizer earnings retrieved successfully", earnings, nil)
}
