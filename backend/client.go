// Package backend is the HTTP client for the khata application backend. It
// owns the wire contract for order initiation, payment verification and the
// customer/ledger lookups the payment page needs. Every call takes the bearer
// token explicitly; nothing here caches credentials.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kunalverma25/khatapay/models"
	"github.com/kunalverma25/khatapay/utils"
)

// Client talks to the khata backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: utils.BackendRequestTimeout,
		},
	}
}

// newRequest builds a JSON request, attaching the bearer token when present
func (c *Client) newRequest(ctx context.Context, method, path, token string, body interface{}) (*http.Request, error) {
	var buf *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, utils.TransportError("Failed to encode request", err)
		}
		buf = bytes.NewBuffer(payload)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, utils.TransportError("Failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// GatewayKey fetches the payment gateway's public key id from the backend
func (c *Client) GatewayKey(ctx context.Context) (string, error) {
	utils.LogDebug("Fetching gateway key from backend")
	req, err := c.newRequest(ctx, http.MethodGet, "/api/customers/payments/get-key", "", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.LogError("Gateway key request failed: %v", err)
		return "", utils.TransportError("Could not reach the khata service", err)
	}
	defer resp.Body.Close()

	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		utils.LogError("Gateway key response malformed: %v", err)
		return "", utils.TransportError("Unexpected response from the khata service", err)
	}
	if body.Key == "" {
		utils.LogError("Backend returned an empty gateway key")
		return "", utils.BusinessError("Payment key not available")
	}
	return body.Key, nil
}

// Customer fetches the logged-in customer's profile
func (c *Client) Customer(ctx context.Context, token string) (models.CustomerProfile, error) {
	utils.LogDebug("Fetching customer profile from backend")
	req, err := c.newRequest(ctx, http.MethodGet, "/api/customers/me", token, nil)
	if err != nil {
		return models.CustomerProfile{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.LogError("Customer profile request failed: %v", err)
		return models.CustomerProfile{}, utils.TransportError("Could not reach the khata service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		utils.LogError("Customer profile request rejected with status %d", resp.StatusCode)
		return models.CustomerProfile{}, utils.AuthError("Please login again", nil)
	}

	var body struct {
		Customer models.CustomerProfile `json:"customer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		utils.LogError("Customer profile response malformed: %v", err)
		return models.CustomerProfile{}, utils.TransportError("Error loading customer information", err)
	}
	if body.Customer.ID == "" {
		utils.LogError("Customer profile response carried no customer id")
		return models.CustomerProfile{}, utils.BusinessError("Error loading customer information")
	}
	return body.Customer, nil
}

// CreateOrder asks the backend to create a gateway order for the intent.
// The amount travels in minor units exactly as recorded on the intent.
func (c *Client) CreateOrder(ctx context.Context, intent models.PaymentIntent, token string) (models.GatewayOrder, error) {
	if intent.AmountMinorUnits <= 0 {
		return models.GatewayOrder{}, utils.ValidationError("Please enter a valid amount")
	}
	if intent.CustomerID == "" {
		return models.GatewayOrder{}, utils.ValidationError("Customer information not loaded")
	}
	if token == "" {
		return models.GatewayOrder{}, utils.AuthError("Please login for access", nil)
	}

	utils.LogInfo("Creating gateway order - customer: %s, amount: %d %s",
		intent.CustomerID, intent.AmountMinorUnits, intent.Currency)

	payload := map[string]interface{}{
		"amount":     intent.AmountMinorUnits,
		"customerId": intent.CustomerID,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/customers/payments/create-order", token, payload)
	if err != nil {
		return models.GatewayOrder{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.LogError("Create order request failed for customer %s: %v", intent.CustomerID, err)
		return models.GatewayOrder{}, utils.TransportError("Could not reach the khata service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		utils.LogError("Create order rejected with status %d for customer %s", resp.StatusCode, intent.CustomerID)
		return models.GatewayOrder{}, utils.AuthError("Please login again", nil)
	}

	var body struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderId"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		utils.LogError("Create order response malformed for customer %s: %v", intent.CustomerID, err)
		return models.GatewayOrder{}, utils.TransportError("Unexpected response from the khata service", err)
	}

	if !body.Success || body.OrderID == "" {
		message := body.Message
		if message == "" {
			message = "Failed to create payment order"
		}
		utils.LogError("Backend declined order creation for customer %s: %s", intent.CustomerID, message)
		return models.GatewayOrder{}, utils.BusinessError(message)
	}

	utils.LogInfo("Gateway order created - order: %s, customer: %s", body.OrderID, intent.CustomerID)
	return models.GatewayOrder{
		OrderID: body.OrderID,
		Intent:  intent,
	}, nil
}

// statusText is only used in transport error details
func statusText(resp *http.Response) string {
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
