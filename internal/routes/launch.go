package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupLaunchRoutes sets up all routes related to launch campaign management
func SetupLaunchRoutes(r *gin.Engine) {
	launch := r.Group("/launch")
	{
		launch.GET("", handlers.ListLaunches)
		launch.GET("/:id", handlers.GetLaunch)
		launch.GET("/:id/capacity", handlers.GetRemainingCapacity)
		launch.GET("/:id/contributor/:address", handlers.GetContributor)
		launch.GET("/:id/pools", handlers.GetPools)
		launch.GET("/:id/events", handlers.GetLaunchEvents)
		launch.POST("", handlers.CreateLaunch)
		launch.POST("/:id/contribute/primary", handlers.ContributePrimary)
		launch.POST("/:id/contribute/secondary", handlers.ContributeSecondary)
		launch.POST("/:id/finalize", handlers.Finalize)
		launch.POST("/:id/cancel", handlers.Cancel)
		launch.POST("/:id/refund", handlers.Refund)
		launch.POST("/:id/withdraw-liquidity", handlers.WithdrawLiquidity)
		launch.POST("/:id/claim-vested", handlers.ClaimVested)
	}
	r.GET("/params", handlers.GetParams)
}
