package marketplace

import (
	"boletamaster/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupMarketplaceRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	market := rg.Group("/marketplace")
	market.GET("/listings", controller.GetListings)

	customer := market.Group("")
	customer.Use(auth, middleware.RequireCustomer())
	{
		customer.POST("/purchases", controller.BuyPrimary)

		customer.GET("/tickets", controller.GetMyTickets)
		customer.POST("/tickets/:id/transfer", controller.TransferTicket)
		customer.POST("/tickets/:id/redeem", controller.RedeemTicket)

		customer.POST("/listings", controller.CreateListing)
		customer.POST("/listings/:id/buy", controller.BuyListing)
		customer.POST("/listings/:id/counteroffers", controller.CreateCounteroffer)
		customer.GET("/listings/:id/counteroffers", controller.GetListingCounteroffers)

		customer.POST("/counteroffers/:id/accept", controller.AcceptCounteroffer)
		customer.POST("/counteroffers/:id/reject", controller.RejectCounteroffer)

		customer.GET("/me/listings", controller.GetMyListings)
		customer.GET("/me/counteroffers", controller.GetMyCounteroffers)
	}

	// admins take listings down through the same route
	authed := market.Group("")
	authed.Use(auth)
	{
		authed.DELETE("/listings/:id", controller.RemoveListing)
		authed.GET("/tickets/:id/refund-quote", controller.GetRefundQuote)
	}

	organizer := rg.Group("/organizer")
	organizer.Use(auth, middleware.RequireOrganizer())
	{
		organizer.POST("/localities/:id/preallocate", controller.PreAllocate)
	}
}
