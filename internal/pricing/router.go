package pricing

import (
	"boletamaster/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupFeeRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	adminFees := router.Group("/admin/fees")
	adminFees.Use(auth, middleware.RequireAdmin())
	{
		adminFees.GET("", controller.GetFees)
		adminFees.PUT("", controller.UpdateFees)
	}
}
