package marketplace

import (
	"net/http"
	"strconv"

	"boletamaster/internal/shared/utils/response"
	"boletamaster/internal/tickets"
	"boletamaster/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{service: service, validator: validator.New()}
}

// bind decodes and validates the JSON body, writing the 400 itself
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

// BuyPrimary godoc
// @Summary Buy tickets from a locality
// @Description Debits the caller's wallet for the tickets plus service and issuance fees
// @Tags marketplace
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BuyPrimaryRequest true "Purchase"
// @Success 201 {object} response.StandardApiResponse
// @Failure 402 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /marketplace/purchases [post]
func (c *Controller) BuyPrimary(ctx *gin.Context) {
	var req BuyPrimaryRequest
	if !c.bind(ctx, &req) {
		return
	}
	res, err := c.service.BuyPrimary(ctx.Request.Context(), PurchaseInput{
		Buyer:      ctx.GetString("login"),
		EventID:    req.EventID,
		LocalityID: req.LocalityID,
		Quantity:   req.Quantity,
		Kind:       tickets.Kind(req.Kind),
		Benefits:   req.Benefits,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Tickets purchased", ToPurchaseResponse(res), nil)
}

// GetMyTickets godoc
// @Summary List the tickets the caller holds
// @Tags marketplace
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/tickets [get]
func (c *Controller) GetMyTickets(ctx *gin.Context) {
	list, err := c.service.HoldingsOf(ctx.Request.Context(), ctx.GetString("login"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Tickets retrieved", list, nil)
}

// TransferTicket godoc
// @Summary Give a ticket to another customer
// @Description The sender confirms with their password. Any active listing of the ticket is closed.
// @Tags marketplace
// @Accept json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param request body TransferRequest true "Recipient"
// @Success 200 {object} response.StandardApiResponse
// @Failure 403 {object} response.StandardApiResponse
// @Router /marketplace/tickets/{id}/transfer [post]
func (c *Controller) TransferTicket(ctx *gin.Context) {
	var req TransferRequest
	if !c.bind(ctx, &req) {
		return
	}
	t, err := c.service.Transfer(ctx.Request.Context(), TransferInput{
		TicketID: ctx.Param("id"),
		From:     ctx.GetString("login"),
		Password: req.Password,
		To:       req.To,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket transferred", t, nil)
}

// RedeemTicket godoc
// @Summary Use a ticket, or one admission of a discount bundle
// @Tags marketplace
// @Accept json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param request body RedeemRequest false "Bundle index"
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/tickets/{id}/redeem [post]
func (c *Controller) RedeemTicket(ctx *gin.Context) {
	var req RedeemRequest
	if ctx.Request.ContentLength > 0 && !c.bind(ctx, &req) {
		return
	}
	t, err := c.service.Redeem(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"), req.Index)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket redeemed", t, nil)
}

// GetRefundQuote godoc
// @Summary Quote what a refund of the ticket would pay
// @Tags marketplace
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param cancellation query bool false "Quote an event cancellation refund"
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/tickets/{id}/refund-quote [get]
func (c *Controller) GetRefundQuote(ctx *gin.Context) {
	cancellation, _ := strconv.ParseBool(ctx.DefaultQuery("cancellation", "false"))
	quote, err := c.service.ComputeRefund(ctx.Request.Context(), ctx.Param("id"), cancellation)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Refund quote", quote, nil)
}

// CreateListing godoc
// @Summary Offer a held ticket for resale
// @Tags marketplace
// @Accept json
// @Security BearerAuth
// @Param request body CreateListingRequest true "Listing"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /marketplace/listings [post]
func (c *Controller) CreateListing(ctx *gin.Context) {
	var req CreateListingRequest
	if !c.bind(ctx, &req) {
		return
	}
	l, err := c.service.ListForResale(ctx.Request.Context(), ctx.GetString("login"), req.TicketID, decimal.RequireFromString(req.Price))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Listing created", l, nil)
}

// GetListings godoc
// @Summary Browse active resale listings
// @Tags marketplace
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/listings [get]
func (c *Controller) GetListings(ctx *gin.Context) {
	list, err := c.service.QueryActiveListings(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Active listings retrieved", list, nil)
}

// GetMyListings godoc
// @Summary List every listing of the caller, active or not
// @Tags marketplace
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/me/listings [get]
func (c *Controller) GetMyListings(ctx *gin.Context) {
	list, err := c.service.MyListings(ctx.Request.Context(), ctx.GetString("login"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Listings retrieved", list, nil)
}

// RemoveListing godoc
// @Summary Withdraw a listing
// @Description Sellers withdraw their own listings; admins may take down any listing
// @Tags marketplace
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/listings/{id} [delete]
func (c *Controller) RemoveListing(ctx *gin.Context) {
	isAdmin := ctx.GetString("role") == string(users.RoleAdmin)
	l, err := c.service.RemoveListing(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("login"), isAdmin)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Listing removed", l, nil)
}

// BuyListing godoc
// @Summary Buy a listed ticket at its asking price
// @Tags marketplace
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 402 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /marketplace/listings/{id}/buy [post]
func (c *Controller) BuyListing(ctx *gin.Context) {
	res, err := c.service.BuyResale(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket bought", ResaleResponse{
		Listing:  res.Listing,
		Ticket:   res.Ticket,
		Purchase: res.Purchase,
	}, nil)
}

// CreateCounteroffer godoc
// @Summary Offer a different price on a listing
// @Tags marketplace
// @Accept json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param request body CounterofferRequest true "Offer"
// @Success 201 {object} response.StandardApiResponse
// @Router /marketplace/listings/{id}/counteroffers [post]
func (c *Controller) CreateCounteroffer(ctx *gin.Context) {
	var req CounterofferRequest
	if !c.bind(ctx, &req) {
		return
	}
	offer, err := c.service.CreateCounteroffer(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"), decimal.RequireFromString(req.Price))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Counteroffer created", offer, nil)
}

// GetListingCounteroffers godoc
// @Summary List the offers on one of the caller's listings
// @Tags marketplace
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/listings/{id}/counteroffers [get]
func (c *Controller) GetListingCounteroffers(ctx *gin.Context) {
	list, err := c.service.ListCounteroffers(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Counteroffers retrieved", list, nil)
}

func (c *Controller) GetMyCounteroffers(ctx *gin.Context) {
	list, err := c.service.MyCounteroffers(ctx.Request.Context(), ctx.GetString("login"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Counteroffers retrieved", list, nil)
}

// AcceptCounteroffer godoc
// @Summary Sell the ticket at the offered price
// @Description Every other pending offer on the listing is rejected
// @Tags marketplace
// @Security BearerAuth
// @Param id path string true "Counteroffer ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/counteroffers/{id}/accept [post]
func (c *Controller) AcceptCounteroffer(ctx *gin.Context) {
	res, err := c.service.AcceptCounteroffer(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Counteroffer accepted", ToAcceptResponse(res), nil)
}

// RejectCounteroffer godoc
// @Summary Decline an offer
// @Tags marketplace
// @Security BearerAuth
// @Param id path string true "Counteroffer ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /marketplace/counteroffers/{id}/reject [post]
func (c *Controller) RejectCounteroffer(ctx *gin.Context) {
	offer, err := c.service.RejectCounteroffer(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Counteroffer rejected", offer, nil)
}

// PreAllocate godoc
// @Summary Take tickets from one of the organizer's localities without paying
// @Tags organizer
// @Accept json
// @Security BearerAuth
// @Param id path string true "Locality ID"
// @Param request body PreAllocateRequest true "Allocation"
// @Success 201 {object} response.StandardApiResponse
// @Router /organizer/localities/{id}/preallocate [post]
func (c *Controller) PreAllocate(ctx *gin.Context) {
	var req PreAllocateRequest
	if !c.bind(ctx, &req) {
		return
	}
	res, err := c.service.PreAllocate(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"), req.Quantity, decimal.RequireFromString(req.BasePrice))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Tickets pre-allocated", ToPurchaseResponse(res), nil)
}
