package utils

import "time"

// Application constants
const (
	// Application name
	AppName = "KhataPay"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default khata backend base URL
	DefaultBackendBaseURL = "http://localhost:5000"

	// Payment currency; the gateway account is INR-only
	Currency = "INR"

	// Merchant display name shown in the payment widget
	MerchantName = "Balajee Sales"

	// Payment description shown in the payment widget
	PaymentDescription = "Khata Payment"

	// Widget theme color
	ThemeColor = "#007bff"

	// Prefill name used when the customer profile has none
	DefaultPrefillName = "Customer"

	// Where the customer lands after a successful payment
	NavigationTarget = "/dashboard"

	// Delay before post-success navigation so the user sees the result
	NavigationDelay = 1500 * time.Millisecond

	// Timeout for a single backend request
	BackendRequestTimeout = 15 * time.Second
)
