package notifications

import (
	"github.com/gin-gonic/gin"
)

func SetupActivityRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	activity := rg.Group("/activity")
	activity.Use(auth)
	{
		activity.GET("", controller.GetMyActivity)
	}
}
