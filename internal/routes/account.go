package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAccountRoutes sets up all routes related to the asset book
func SetupAccountRoutes(r *gin.Engine) {
	account := r.Group("/account")
	{
		account.GET("/balance/:asset/:address", handlers.GetBalance)
		account.GET("/allowance/:asset", handlers.GetAllowance)
		account.POST("/faucet", handlers.Faucet)
		account.POST("/approve", handlers.Approve)
	}
}
