package routes

import (
	"github.com/kunalverma25/khatapay/controllers"
	"github.com/kunalverma25/khatapay/middleware"
	"github.com/kunalverma25/khatapay/utils"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(pc *controllers.PaymentController) *gin.Engine {
	router := gin.New()

	// Global middleware must precede route registration
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())

	// API version group
	api := router.Group("/" + utils.APIVersion)
	{
		initPaymentRoutes(api, pc)
	}

	return router
}

// initPaymentRoutes mounts the customer payment flow
func initPaymentRoutes(api *gin.RouterGroup, pc *controllers.PaymentController) {
	payments := api.Group("/customers/payments")

	// The widget key is needed before login completes on the payment page
	payments.GET("/get-key", pc.GetGatewayKey)

	authed := payments.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("", pc.InitiatePayment)
		authed.GET("/:id", pc.PaymentStatus)
		authed.POST("/:id/callback", pc.GatewayCallback)
		authed.POST("/:id/failed", pc.GatewayFailed)
		authed.POST("/:id/dismiss", pc.DismissPayment)
	}
}
