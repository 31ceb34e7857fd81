package controllers

import (
	"errors"

	"github.com/kunalverma25/khatapay/backend"
	"github.com/kunalverma25/khatapay/middleware"
	"github.com/kunalverma25/khatapay/models"
	"github.com/kunalverma25/khatapay/payment"
	"github.com/kunalverma25/khatapay/utils"

	"github.com/gin-gonic/gin"
)

// PaymentController exposes the online payment flow over HTTP
type PaymentController struct {
	Backend *backend.Client
	Flow    *payment.Controller
}

// NewPaymentController wires the payment flow handlers
func NewPaymentController(b *backend.Client, flow *payment.Controller) *PaymentController {
	return &PaymentController{
		Backend: b,
		Flow:    flow,
	}
}

// GET /customers/payments/get-key
func (pc *PaymentController) GetGatewayKey(c *gin.Context) {
	utils.LogInfo("GetGatewayKey called")
	key, err := pc.Backend.GatewayKey(c.Request.Context())
	if err != nil {
		utils.LogError("Failed to fetch gateway key: %v", err)
		respondFlowError(c, err)
		return
	}
	utils.Success(c, "Gateway key retrieved", gin.H{"key": key})
}

// POST /customers/payments
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	utils.LogInfo("InitiatePayment called")
	token := middleware.Token(c)

	var req struct {
		Amount     string `json:"amount" binding:"required"`
		CustomerID string `json:"customer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid payment request: %v", err)
		utils.BadRequest(c, "Invalid request. amount is required", err.Error())
		return
	}

	key, err := pc.Backend.GatewayKey(c.Request.Context())
	if err != nil {
		utils.LogError("Failed to load gateway key: %v", err)
		respondFlowError(c, err)
		return
	}

	// An admin paying on a customer's behalf names the customer explicitly;
	// otherwise the profile comes from the customer's own session.
	var profile models.CustomerProfile
	if req.CustomerID != "" {
		profile = models.CustomerProfile{ID: req.CustomerID}
	} else {
		profile, err = pc.Backend.Customer(c.Request.Context(), token)
		if err != nil {
			utils.LogError("Failed to load customer profile: %v", err)
			respondFlowError(c, err)
			return
		}
	}
	utils.LogInfo("Initiating payment for customer %s, amount %s", profile.ID, req.Amount)

	status, err := pc.Flow.Submit(c.Request.Context(), profile, req.Amount, key, token)
	if err != nil {
		utils.LogError("Payment submission failed for customer %s: %v", profile.ID, err)
		if status.AttemptID != "" {
			utils.BadRequest(c, utils.MessageOf(err, "Error while processing payment"), gin.H{"attempt": status})
			return
		}
		respondFlowError(c, err)
		return
	}

	utils.LogInfo("Payment attempt %s awaiting gateway for customer %s", status.AttemptID, profile.ID)
	utils.Success(c, "Payment initiated successfully", gin.H{"attempt": status})
}

// POST /customers/payments/:id/callback
func (pc *PaymentController) GatewayCallback(c *gin.Context) {
	utils.LogInfo("GatewayCallback called")
	attemptID := c.Param("id")

	var req struct {
		OrderID   string `json:"razorpay_order_id" binding:"required"`
		PaymentID string `json:"razorpay_payment_id" binding:"required"`
		Signature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid gateway callback for attempt %s: %v", attemptID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	result := models.GatewayResult{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	}
	if err := pc.Flow.HandleGatewaySuccess(attemptID, result); err != nil {
		respondCallbackError(c, attemptID, err)
		return
	}

	status, err := pc.Flow.Wait(c.Request.Context(), attemptID)
	if err != nil {
		utils.LogError("Waiting on attempt %s failed: %v", attemptID, err)
		utils.InternalServerError(c, "Error while processing payment", nil)
		return
	}

	if status.State != models.StateSucceeded {
		utils.LogError("Attempt %s ended in %s: %s", attemptID, status.State, status.Message)
		utils.BadRequest(c, status.Message, gin.H{"retry": true, "attempt": status})
		return
	}
	utils.LogInfo("Attempt %s verified, receipt: %q", attemptID, status.ReceiptURL)
	utils.Success(c, status.Message, gin.H{"attempt": status})
}

// POST /customers/payments/:id/failed
func (pc *PaymentController) GatewayFailed(c *gin.Context) {
	utils.LogInfo("GatewayFailed called")
	attemptID := c.Param("id")

	var req struct {
		ErrorDescription string `json:"error_description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid gateway failure report for attempt %s: %v", attemptID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if err := pc.Flow.HandleGatewayFailure(attemptID, req.ErrorDescription); err != nil {
		respondCallbackError(c, attemptID, err)
		return
	}

	status, err := pc.Flow.Wait(c.Request.Context(), attemptID)
	if err != nil {
		utils.LogError("Waiting on attempt %s failed: %v", attemptID, err)
		utils.InternalServerError(c, "Error while processing payment", nil)
		return
	}
	utils.Success(c, "Gateway failure recorded", gin.H{"attempt": status})
}

// POST /customers/payments/:id/dismiss
func (pc *PaymentController) DismissPayment(c *gin.Context) {
	utils.LogInfo("DismissPayment called")
	attemptID := c.Param("id")

	if err := pc.Flow.HandleDismissal(attemptID); err != nil {
		respondCallbackError(c, attemptID, err)
		return
	}

	status, err := pc.Flow.Wait(c.Request.Context(), attemptID)
	if err != nil {
		utils.LogError("Waiting on attempt %s failed: %v", attemptID, err)
		utils.InternalServerError(c, "Error while processing payment", nil)
		return
	}
	utils.Success(c, "Payment cancelled", gin.H{"attempt": status})
}

// GET /customers/payments/:id
func (pc *PaymentController) PaymentStatus(c *gin.Context) {
	utils.LogInfo("PaymentStatus called")
	attemptID := c.Param("id")

	status, ok := pc.Flow.Status(attemptID)
	if !ok {
		utils.LogError("Status requested for unknown attempt %s", attemptID)
		utils.NotFound(c, "Payment attempt not found")
		return
	}
	utils.Success(c, "Payment status retrieved", gin.H{"attempt": status})
}

// respondFlowError maps an error kind to its HTTP response
func respondFlowError(c *gin.Context, err error) {
	switch utils.KindOf(err) {
	case utils.KindValidation:
		utils.BadRequest(c, utils.MessageOf(err, "Invalid request"), nil)
	case utils.KindAuth:
		utils.Unauthorized(c, utils.MessageOf(err, "Please login again"))
	case utils.KindBusiness:
		utils.BadRequest(c, utils.MessageOf(err, "Error while processing payment"), nil)
	case utils.KindTransport:
		utils.BadGateway(c, utils.MessageOf(err, "Could not reach the khata service"), nil)
	default:
		utils.InternalServerError(c, "Error while processing payment", nil)
	}
}

// respondCallbackError maps widget-callback routing failures
func respondCallbackError(c *gin.Context, attemptID string, err error) {
	switch {
	case errors.Is(err, payment.ErrUnknownAttempt):
		utils.LogError("Callback for unknown attempt %s", attemptID)
		utils.NotFound(c, "Payment attempt not found")
	case errors.Is(err, payment.ErrSessionResolved):
		utils.LogError("Late callback for resolved attempt %s", attemptID)
		utils.Conflict(c, "Gateway session already resolved", nil)
	default:
		respondFlowError(c, err)
	}
}
