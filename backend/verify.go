package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kunalverma25/khatapay/models"
	"github.com/kunalverma25/khatapay/utils"
)

// verifyRequest is the wire form of a verification submission. The three
// gateway fields are forwarded exactly as the widget produced them; amount
// and date always come from the locally-held intent.
type verifyRequest struct {
	RazorpayOrderID   string      `json:"razorpay_order_id"`
	RazorpayPaymentID string      `json:"razorpay_payment_id"`
	RazorpaySignature string      `json:"razorpay_signature"`
	CustomerID        string      `json:"customerId"`
	Amount            json.Number `json:"amount"`
	Date              string      `json:"date"`
}

// VerifyPayment submits a gateway result for authoritative verification.
// A response that is transport-successful but not verified comes back as a
// VerificationOutcome with Verified false and a nil error; the caller must
// branch on the outcome, not only on the error.
func (c *Client) VerifyPayment(ctx context.Context, result models.GatewayResult, intent models.PaymentIntent, token string) (models.VerificationOutcome, error) {
	if result.OrderID == "" || result.PaymentID == "" || result.Signature == "" {
		return models.VerificationOutcome{}, utils.ValidationError("Incomplete gateway result")
	}
	if token == "" {
		return models.VerificationOutcome{}, utils.AuthError("Please login for access", nil)
	}

	utils.LogInfo("Verifying payment - order: %s, payment: %s, customer: %s",
		result.OrderID, result.PaymentID, intent.CustomerID)

	payload := verifyRequest{
		RazorpayOrderID:   result.OrderID,
		RazorpayPaymentID: result.PaymentID,
		RazorpaySignature: result.Signature,
		CustomerID:        intent.CustomerID,
		Amount:            json.Number(intent.AmountMajorUnits()),
		Date:              intent.Date(),
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/customers/payments/verify", token, payload)
	if err != nil {
		return models.VerificationOutcome{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.LogError("Verification request failed for order %s: %v", result.OrderID, err)
		return models.VerificationOutcome{}, utils.TransportError("Could not reach the khata service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		utils.LogError("Verification rejected with status %d for order %s", resp.StatusCode, result.OrderID)
		return models.VerificationOutcome{}, utils.AuthError("Please login again", nil)
	}

	var body struct {
		Success    bool   `json:"success"`
		ReceiptURL string `json:"receiptURL"`
		Message    string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		utils.LogError("Verification response malformed for order %s (%s): %v", result.OrderID, statusText(resp), err)
		return models.VerificationOutcome{}, utils.TransportError("Unexpected response from the khata service", err)
	}

	outcome := models.VerificationOutcome{
		Verified:   body.Success,
		ReceiptURL: body.ReceiptURL,
		Message:    body.Message,
	}
	if outcome.Verified {
		utils.LogInfo("Payment verified - order: %s, receipt: %q", result.OrderID, outcome.ReceiptURL)
	} else {
		utils.LogError("Payment not verified - order: %s, message: %q", result.OrderID, outcome.Message)
	}
	return outcome, nil
}
