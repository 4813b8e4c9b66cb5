package venues

import (
	"net/http"

	"boletamaster/internal/shared/utils/response"

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

func (c *Controller) ListVenues(ctx *gin.Context) {
	list, err := c.service.ListVenues(ctx.Request.Context(), ctx.Query("all") != "true")
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Venues retrieved", list, nil)
}

func (c *Controller) CreateVenue(ctx *gin.Context) {
	var req CreateVenueRequest
	if !c.bind(ctx, &req) {
		return
	}
	venue, err := c.service.CreateVenue(ctx.Request.Context(), ctx.GetString("login"), VenueInput(req))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Venue created", venue, nil)
}

func (c *Controller) SuggestVenue(ctx *gin.Context) {
	var req CreateVenueRequest
	if !c.bind(ctx, &req) {
		return
	}
	venue, err := c.service.SuggestVenue(ctx.Request.Context(), ctx.GetString("login"), VenueInput(req))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Venue suggested, pending approval", venue, nil)
}

func (c *Controller) ApproveVenue(ctx *gin.Context) {
	venue, err := c.service.ApproveVenue(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Venue approved", venue, nil)
}

func (c *Controller) AddLocality(ctx *gin.Context) {
	var req CreateLocalityRequest
	if !c.bind(ctx, &req) {
		return
	}
	bundleDiscount := decimal.Zero
	if req.BundleDiscount != "" {
		bundleDiscount = decimal.RequireFromString(req.BundleDiscount)
	}
	locality, err := c.service.AddLocality(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"), LocalityInput{
		Name:           req.Name,
		Numbered:       req.Numbered,
		Capacity:       req.Capacity,
		BasePrice:      decimal.RequireFromString(req.BasePrice),
		BundleDiscount: bundleDiscount,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Locality added", locality, nil)
}

// ListLocalities returns every locality of an event along with any discount in effect
func (c *Controller) ListLocalities(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	list, err := c.service.ListLocalities(reqCtx, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	out := make([]LocalityResponse, 0, len(list))
	for _, l := range list {
		item := LocalityResponse{Locality: l}
		d, ok, err := c.service.ActiveDiscountForLocality(reqCtx, l.ID)
		if err != nil {
			response.RespondError(ctx, err)
			return
		}
		if ok {
			item.ActiveDiscount = &d
		}
		out = append(out, item)
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Localities retrieved", out, nil)
}

func (c *Controller) CreateOffer(ctx *gin.Context) {
	var req CreateOfferRequest
	if !c.bind(ctx, &req) {
		return
	}
	offer, err := c.service.CreateOffer(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"), OfferInput{
		Description: req.Description,
		Discount:    decimal.RequireFromString(req.Discount),
		StartsAt:    req.StartsAt,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Offer created", offer, nil)
}

func (c *Controller) ListOffers(ctx *gin.Context) {
	list, err := c.service.ListOffers(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Offers retrieved", list, nil)
}

func (c *Controller) DeactivateOffer(ctx *gin.Context) {
	offer, err := c.service.DeactivateOffer(ctx.Request.Context(), ctx.GetString("login"), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Offer deactivated", offer, nil)
}
