package events

import (
	"net/http"
	"time"

	"boletamaster/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller interface {
	ListEvents(c *gin.Context)
	GetEvent(c *gin.Context)
	CreateEvent(c *gin.Context)
	ListOrganizerEvents(c *gin.Context)
	ApproveEvent(c *gin.Context)
	RejectEvent(c *gin.Context)
}

type controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) Controller {
	return &controller{service: service, validator: validator.New()}
}

// ListEvents godoc
// @Summary List events
// @Tags events
// @Param active query bool false "only approved, future, non-cancelled events"
// @Param status query string false "filter by status"
// @Success 200 {object} response.StandardApiResponse
// @Router /events [get]
func (ctrl *controller) ListEvents(c *gin.Context) {
	query := ListQuery{
		OnlyActive: c.Query("active") == "true",
		Status:     Status(c.Query("status")),
	}
	list, err := ctrl.service.ListEvents(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved", ToEventResponses(list, time.Now()), nil)
}

func (ctrl *controller) GetEvent(c *gin.Context) {
	event, err := ctrl.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Event retrieved", ToEventResponse(event, time.Now()), nil)
}

// CreateEvent godoc
// @Summary Create an event pending admin approval
// @Tags events
// @Security BearerAuth
// @Param request body CreateEventRequest true "event"
// @Success 201 {object} response.StandardApiResponse
// @Router /organizer/events [post]
func (ctrl *controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}
	if err := ctrl.validator.Struct(req); err != nil {
		response.RespondValidation(c, err)
		return
	}

	event, err := ctrl.service.CreateEvent(c.Request.Context(), c.GetString("login"), CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		VenueID:     req.VenueID,
		ShowTime:    req.ShowTime,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusCreated, "Event created, pending approval", ToEventResponse(event, time.Now()), nil)
}

func (ctrl *controller) ListOrganizerEvents(c *gin.Context) {
	list, err := ctrl.service.ListEvents(c.Request.Context(), ListQuery{OrganizerLogin: c.GetString("login")})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved", ToEventResponses(list, time.Now()), nil)
}

func (ctrl *controller) ApproveEvent(c *gin.Context) {
	event, err := ctrl.service.ApproveEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Event approved", ToEventResponse(event, time.Now()), nil)
}

func (ctrl *controller) RejectEvent(c *gin.Context) {
	event, err := ctrl.service.RejectEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Event rejected", ToEventResponse(event, time.Now()), nil)
}
