package refunds

import (
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
	return &Controller{service: service, validator: validator.New()}
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondValidation(ctx, err)
		return false
	}
	return true
}

// RequestRefund godoc
// @Summary File a hardship refund request for a held ticket
// @Tags refunds
// @Accept json
// @Security BearerAuth
// @Param request body CreateRefundRequest true "Request"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /refunds/requests [post]
func (c *Controller) RequestRefund(ctx *gin.Context) {
	var req CreateRefundRequest
	if !c.bind(ctx, &req) {
		return
	}
	out, err := c.service.RequestHardship(ctx.Request.Context(), ctx.GetString("login"), req.TicketID, req.Reason)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Refund request filed", out, nil)
}

func (c *Controller) GetMyRequests(ctx *gin.Context) {
	list, err := c.service.ListMine(ctx.Request.Context(), ctx.GetString("login"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Refund requests retrieved", list, nil)
}

// GetPendingRequests godoc
// @Summary List refund requests awaiting a decision
// @Tags refunds
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/refunds/requests [get]
func (c *Controller) GetPendingRequests(ctx *gin.Context) {
	list, err := c.service.ListPending(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Pending refund requests retrieved", list, nil)
}

// ApproveRequest godoc
// @Summary Approve a hardship refund
// @Description Credits the holder the full base price and retires the ticket
// @Tags refunds
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/refunds/requests/{id}/approve [post]
func (c *Controller) ApproveRequest(ctx *gin.Context) {
	out, err := c.service.Approve(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Refund approved", out, nil)
}

// RejectRequest godoc
// @Summary Reject a hardship refund
// @Tags refunds
// @Accept json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body RejectRefundRequest false "Note for the holder"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/refunds/requests/{id}/reject [post]
func (c *Controller) RejectRequest(ctx *gin.Context) {
	var req RejectRefundRequest
	if ctx.Request.ContentLength > 0 && !c.bind(ctx, &req) {
		return
	}
	out, err := c.service.Reject(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"), req.Note)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Refund rejected", out, nil)
}

// CancelEvent godoc
// @Summary Cancel an event and refund every valid ticket to its holder
// @Description Holders get the base price minus the issuance fee
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body CancelEventRequest true "Reason"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/events/{id}/cancel [post]
func (c *Controller) CancelEvent(ctx *gin.Context) {
	var req CancelEventRequest
	if !c.bind(ctx, &req) {
		return
	}
	summary, err := c.service.CancelEvent(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"), req.Reason)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Event cancelled and refunded", summary, nil)
}
