package config

import (
	"os"
	"time"

	"github.com/kunalverma25/khatapay/utils"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port                string
	Env                 string
	BackendBaseURL      string
	MerchantName        string
	MerchantDescription string
	ThemeColor          string
	NavigationTarget    string
	NavigationDelay     time.Duration
}

// LoadConfig loads configuration from environment variables. A missing .env
// file is not an error; the process environment still applies.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file loaded: %v", err)
	}

	config := &Config{
		Port:                getEnv("PORT", utils.DefaultPort),
		Env:                 os.Getenv("ENV"),
		BackendBaseURL:      getEnv("BACKEND_BASE_URL", utils.DefaultBackendBaseURL),
		MerchantName:        getEnv("MERCHANT_NAME", utils.MerchantName),
		MerchantDescription: getEnv("PAYMENT_DESCRIPTION", utils.PaymentDescription),
		ThemeColor:          getEnv("THEME_COLOR", utils.ThemeColor),
		NavigationTarget:    getEnv("NAVIGATION_TARGET", utils.NavigationTarget),
		NavigationDelay:     utils.NavigationDelay,
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
