package purchases

import (
	"boletamaster/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPurchaseRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	mine := rg.Group("/purchases")
	mine.Use(auth)
	{
		mine.GET("", middleware.RequireCustomer(), controller.GetMyPurchases)
		mine.GET("/:id", controller.GetPurchase)
	}

	admin := rg.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("/purchases", controller.ListAll)
		admin.GET("/refunds", controller.ListRefunds)
	}
}
