package main

import (
	"log"

	"github.com/kunalverma25/khatapay/backend"
	"github.com/kunalverma25/khatapay/config"
	"github.com/kunalverma25/khatapay/controllers"
	"github.com/kunalverma25/khatapay/gateway"
	"github.com/kunalverma25/khatapay/payment"
	"github.com/kunalverma25/khatapay/routes"
	"github.com/kunalverma25/khatapay/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Wire the payment flow
	backendClient := backend.NewClient(cfg.BackendBaseURL)
	sessions := gateway.NewRegistry()
	flow := payment.NewController(payment.Config{
		MerchantName:        cfg.MerchantName,
		MerchantDescription: cfg.MerchantDescription,
		ThemeColor:          cfg.ThemeColor,
		NavigationTarget:    cfg.NavigationTarget,
		NavigationDelay:     cfg.NavigationDelay,
	}, backendClient, sessions)
	paymentController := controllers.NewPaymentController(backendClient, flow)

	// Set up router
	router := routes.SetupRouter(paymentController)

	utils.LogInfo("Server starting on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
