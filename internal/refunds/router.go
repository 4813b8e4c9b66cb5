package refunds

import (
	"boletamaster/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRefundRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	mine := rg.Group("/refunds/requests")
	mine.Use(auth, middleware.RequireCustomer())
	{
		mine.POST("", controller.RequestRefund)
		mine.GET("", controller.GetMyRequests)
	}

	admin := rg.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("/refunds/requests", controller.GetPendingRequests)
		admin.POST("/refunds/requests/:id/approve", controller.ApproveRequest)
		admin.POST("/refunds/requests/:id/reject", controller.RejectRequest)
		admin.POST("/events/:id/cancel", controller.CancelEvent)
	}
}
