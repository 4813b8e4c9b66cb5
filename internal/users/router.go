package users

import (
	"github.com/gin-gonic/gin"
)

func SetupWalletRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	wallet := router.Group("/wallet")
	wallet.Use(auth)
	{
		wallet.GET("", controller.GetWallet)
		wallet.POST("/deposit", controller.Deposit)
	}
}
