package events

import (
	"boletamaster/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	public := router.Group("/events")
	{
		public.GET("", controller.ListEvents)
		public.GET("/:id", controller.GetEvent)
	}

	organizer := router.Group("/organizer/events")
	organizer.Use(auth, middleware.RequireOrganizer())
	{
		organizer.POST("", controller.CreateEvent)
		organizer.GET("", controller.ListOrganizerEvents)
	}

	admin := router.Group("/admin/events")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.POST("/:id/approve", controller.ApproveEvent)
		admin.POST("/:id/reject", controller.RejectEvent)
	}
}
