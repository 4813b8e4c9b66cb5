package venues

import (
	"boletamaster/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	rg.GET("/venues", controller.ListVenues)
	rg.GET("/events/:id/localities", controller.ListLocalities)
	rg.GET("/localities/:id/offers", controller.ListOffers)

	organizer := rg.Group("/organizer")
	organizer.Use(auth, middleware.RequireOrganizer())
	{
		organizer.POST("/venues", controller.SuggestVenue)
		organizer.POST("/events/:id/localities", controller.AddLocality)
		organizer.POST("/localities/:id/offers", controller.CreateOffer)
		organizer.DELETE("/offers/:id", controller.DeactivateOffer)
	}

	admin := rg.Group("/admin/venues")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateVenue)
		admin.POST("/:id/approve", controller.ApproveVenue)
	}
}
