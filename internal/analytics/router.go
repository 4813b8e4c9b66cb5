package analytics

import (
	"boletamaster/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	setupAdminAnalyticsRoutes(rg, controller, auth)
	setupOrganizerAnalyticsRoutes(rg, controller, auth)
}

func setupAdminAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	admin := rg.Group("/admin/analytics")
	admin.Use(auth)
	admin.Use(middleware.RequireAdmin())

	earnings := admin.Group("/earnings")
	{
		earnings.GET("", controller.GetPlatformEarnings)
		earnings.GET("/events/:id", controller.GetEventEarnings)
	}
}

func setupOrganizerAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	organizer := rg.Group("/organizer/analytics")
	organizer.Use(auth)
	organizer.Use(middleware.RequireOrganizer())

	organizer.GET("/earnings", controller.GetOrganizerEarnings)
}
