// Package payment owns the online payment reconciliation flow: it sequences
// order initiation, the hosted widget session and backend verification, and
// maps every exit path to a single terminal state.
package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kunalverma25/khatapay/gateway"
	"github.com/kunalverma25/khatapay/models"
	"github.com/kunalverma25/khatapay/utils"

	"github.com/google/uuid"
)

var (
	// ErrUnknownAttempt is returned for callbacks naming no live attempt
	ErrUnknownAttempt = errors.New("unknown payment attempt")
	// ErrSessionResolved is returned when a widget event arrives after the
	// session already resolved; the late event is ignored
	ErrSessionResolved = errors.New("gateway session already resolved")
)

// Backend is the slice of the khata backend client the flow depends on
type Backend interface {
	CreateOrder(ctx context.Context, intent models.PaymentIntent, token string) (models.GatewayOrder, error)
	VerifyPayment(ctx context.Context, result models.GatewayResult, intent models.PaymentIntent, token string) (models.VerificationOutcome, error)
}

// Config carries the presentation and navigation settings of the flow
type Config struct {
	Currency            string
	MerchantName        string
	MerchantDescription string
	ThemeColor          string
	NavigationTarget    string
	NavigationDelay     time.Duration
}

// Status is a point-in-time snapshot of one payment attempt
type Status struct {
	AttemptID        string                   `json:"attempt_id"`
	State            models.PaymentState      `json:"state"`
	Processing       bool                     `json:"processing"`
	Message          string                   `json:"message,omitempty"`
	AmountMinorUnits int64                    `json:"amount"`
	Checkout         *gateway.CheckoutOptions `json:"checkout,omitempty"`
	ReceiptURL       string                   `json:"receipt_url,omitempty"`
	RedirectTo       string                   `json:"redirect_to,omitempty"`
}

// attempt is the controller-owned lifecycle record of one submission. Fields
// are guarded by the controller mutex; done closes on the terminal transition.
type attempt struct {
	id         string
	intent     models.PaymentIntent
	token      string
	order      models.GatewayOrder
	checkout   gateway.CheckoutOptions
	state      models.PaymentState
	message    string
	receiptURL string
	redirectTo string
	done       chan struct{}
}

// Controller runs the reconciliation state machine. One submission creates
// one attempt; attempts never share state and only move forward.
type Controller struct {
	cfg      Config
	backend  Backend
	sessions *gateway.Registry

	// OnNavigate, when set, observes the post-success navigation firing
	OnNavigate func(attemptID, target string)

	mu       sync.Mutex
	attempts map[string]*attempt
	active   map[string]string // customer id -> live attempt id
}

// NewController creates a reconciliation controller. Zero config fields fall
// back to the application defaults.
func NewController(cfg Config, backend Backend, sessions *gateway.Registry) *Controller {
	if cfg.Currency == "" {
		cfg.Currency = utils.Currency
	}
	if cfg.MerchantName == "" {
		cfg.MerchantName = utils.MerchantName
	}
	if cfg.MerchantDescription == "" {
		cfg.MerchantDescription = utils.PaymentDescription
	}
	if cfg.ThemeColor == "" {
		cfg.ThemeColor = utils.ThemeColor
	}
	if cfg.NavigationTarget == "" {
		cfg.NavigationTarget = utils.NavigationTarget
	}
	if cfg.NavigationDelay <= 0 {
		cfg.NavigationDelay = utils.NavigationDelay
	}
	return &Controller{
		cfg:      cfg,
		backend:  backend,
		sessions: sessions,
		attempts: make(map[string]*attempt),
		active:   make(map[string]string),
	}
}

// Submit validates the request, creates the gateway order and opens the
// widget session. It returns with the attempt in AwaitingGateway (checkout
// options ready for the widget) or in a terminal Failed state.
func (c *Controller) Submit(ctx context.Context, profile models.CustomerProfile, rawAmount, gatewayKey, token string) (Status, error) {
	if profile.ID == "" {
		utils.LogError("Payment submitted without a resolved customer")
		return Status{}, utils.ValidationError("Customer information not loaded")
	}

	amountMinor, err := models.ParseAmountMinorUnits(rawAmount)
	if err != nil {
		utils.LogError("Payment submitted with invalid amount %q: %v", rawAmount, err)
		return Status{}, utils.ValidationError("Please enter a valid amount")
	}

	if token == "" {
		utils.LogError("Payment submitted without a token for customer %s", profile.ID)
		return Status{}, utils.AuthError("Please login for access", nil)
	}
	if gatewayKey == "" {
		utils.LogError("Payment submitted without a gateway key for customer %s", profile.ID)
		return Status{}, utils.BusinessError("Payment key not available")
	}

	att := &attempt{
		id:     uuid.New().String(),
		intent: models.NewPaymentIntent(profile.ID, amountMinor, c.cfg.Currency),
		token:  token,
		state:  models.StateIdle,
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	if liveID, ok := c.active[profile.ID]; ok {
		c.mu.Unlock()
		utils.LogError("Duplicate payment submission for customer %s (attempt %s live)", profile.ID, liveID)
		return Status{}, utils.ValidationError("A payment is already in progress")
	}
	c.attempts[att.id] = att
	c.active[profile.ID] = att.id
	att.state = models.StateOrderPending
	c.mu.Unlock()

	utils.LogInfo("Payment attempt %s started - customer: %s, amount: %d paise",
		att.id, profile.ID, amountMinor)

	order, err := c.backend.CreateOrder(ctx, att.intent, token)
	if err != nil {
		c.terminate(att, models.StateFailed, utils.MessageOf(err, "Error while processing payment"))
		return c.snapshot(att), err
	}
	order.Key = gatewayKey

	prefillName := profile.Name
	if prefillName == "" {
		prefillName = utils.DefaultPrefillName
	}
	checkout := gateway.CheckoutOptions{
		Key:              order.Key,
		AmountMinorUnits: order.Intent.AmountMinorUnits,
		Currency:         order.Intent.Currency,
		OrderID:          order.OrderID,
		Name:             c.cfg.MerchantName,
		Description:      c.cfg.MerchantDescription,
		PrefillName:      prefillName,
		ThemeColor:       c.cfg.ThemeColor,
	}

	c.mu.Lock()
	att.order = order
	att.checkout = checkout
	att.state = models.StateAwaitingGateway
	c.mu.Unlock()

	session := c.sessions.Open(att.id, checkout)
	go c.reconcile(att, session)

	return c.snapshot(att), nil
}

// reconcile consumes the session's single outcome and drives the attempt to
// its terminal state. It runs without a deadline; once the widget has handed
// over a signed result the flow must see verification through.
func (c *Controller) reconcile(att *attempt, session *gateway.Session) {
	defer c.sessions.Close(att.id)

	ctx := context.Background()
	outcome, err := session.Await(ctx)
	if err != nil {
		c.terminate(att, models.StateFailed, "Error while processing payment")
		return
	}

	switch outcome.Kind {
	case gateway.OutcomeDismissed:
		utils.LogInfo("Payment attempt %s dismissed by the customer", att.id)
		c.terminate(att, models.StateCancelled, "Payment cancelled")

	case gateway.OutcomeFailure:
		utils.LogError("Payment attempt %s failed at the gateway: %s", att.id, outcome.Description)
		c.terminate(att, models.StateFailed, "Payment failed: "+outcome.Description)

	case gateway.OutcomeSuccess:
		c.verify(att, *outcome.Result)

	default:
		utils.LogError("Payment attempt %s received unknown outcome %q", att.id, outcome.Kind)
		c.terminate(att, models.StateFailed, "Error while processing payment")
	}
}

// verify submits the gateway result against the original intent. The amount
// and customer id sent for verification come from the intent, never from
// anything the widget echoed back.
func (c *Controller) verify(att *attempt, result models.GatewayResult) {
	c.advance(att, models.StateVerifying)

	if result.OrderID != att.order.OrderID {
		utils.LogError("Payment attempt %s gateway result names order %q, expected %q",
			att.id, result.OrderID, att.order.OrderID)
		c.terminate(att, models.StateFailed, "Payment verification failed")
		return
	}

	outcome, err := c.backend.VerifyPayment(context.Background(), result, att.intent, att.token)
	if err != nil {
		c.terminate(att, models.StateFailed, utils.MessageOf(err, "Payment verification failed"))
		return
	}
	if !outcome.Verified {
		message := outcome.Message
		if message == "" {
			message = "Payment verification failed"
		}
		c.terminate(att, models.StateFailed, message)
		return
	}

	c.mu.Lock()
	att.receiptURL = outcome.ReceiptURL
	c.mu.Unlock()
	c.terminate(att, models.StateSucceeded, "Payment successful!")
	c.scheduleNavigation(att)
}

// scheduleNavigation points the customer back at the ledger view after a
// short delay so the updated balance is what they land on.
func (c *Controller) scheduleNavigation(att *attempt) {
	target := c.cfg.NavigationTarget
	utils.LogInfo("Payment attempt %s succeeded, navigating to %s in %v", att.id, target, c.cfg.NavigationDelay)
	time.AfterFunc(c.cfg.NavigationDelay, func() {
		c.mu.Lock()
		att.redirectTo = target
		c.mu.Unlock()
		if c.OnNavigate != nil {
			c.OnNavigate(att.id, target)
		}
	})
}

// advance moves the attempt forward one state; backward moves are refused
func (c *Controller) advance(att *attempt, next models.PaymentState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !att.state.CanAdvanceTo(next) {
		utils.LogError("Refused state transition %s -> %s for attempt %s", att.state, next, att.id)
		return
	}
	att.state = next
}

// terminate drives the attempt into a terminal state exactly once, records
// the user-facing message, and releases the customer's re-entrancy slot.
func (c *Controller) terminate(att *attempt, state models.PaymentState, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if att.state.Terminal() {
		return
	}
	if !att.state.CanAdvanceTo(state) {
		utils.LogError("Refused terminal transition %s -> %s for attempt %s", att.state, state, att.id)
		return
	}
	att.state = state
	att.message = message
	delete(c.active, att.intent.CustomerID)
	close(att.done)
	utils.LogInfo("Payment attempt %s reached %s: %s", att.id, state, message)
}

// HandleGatewaySuccess routes the widget's success callback to its session
func (c *Controller) HandleGatewaySuccess(attemptID string, result models.GatewayResult) error {
	if result.OrderID == "" || result.PaymentID == "" || result.Signature == "" {
		return utils.ValidationError("Incomplete gateway result")
	}
	session, ok := c.sessions.Lookup(attemptID)
	if !ok {
		return ErrUnknownAttempt
	}
	if !session.Succeed(result) {
		return ErrSessionResolved
	}
	return nil
}

// HandleGatewayFailure routes the widget's failure event to its session
func (c *Controller) HandleGatewayFailure(attemptID, description string) error {
	if description == "" {
		description = "Payment could not be completed"
	}
	session, ok := c.sessions.Lookup(attemptID)
	if !ok {
		return ErrUnknownAttempt
	}
	if !session.Fail(description) {
		return ErrSessionResolved
	}
	return nil
}

// HandleDismissal routes the user's widget dismissal to its session
func (c *Controller) HandleDismissal(attemptID string) error {
	session, ok := c.sessions.Lookup(attemptID)
	if !ok {
		return ErrUnknownAttempt
	}
	if !session.Dismiss() {
		return ErrSessionResolved
	}
	return nil
}

// Status returns a snapshot of the attempt
func (c *Controller) Status(attemptID string) (Status, bool) {
	c.mu.Lock()
	att, ok := c.attempts[attemptID]
	c.mu.Unlock()
	if !ok {
		return Status{}, false
	}
	return c.snapshot(att), true
}

// Wait blocks until the attempt reaches a terminal state
func (c *Controller) Wait(ctx context.Context, attemptID string) (Status, error) {
	c.mu.Lock()
	att, ok := c.attempts[attemptID]
	c.mu.Unlock()
	if !ok {
		return Status{}, ErrUnknownAttempt
	}
	select {
	case <-att.done:
		return c.snapshot(att), nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (c *Controller) snapshot(att *attempt) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{
		AttemptID:        att.id,
		State:            att.state,
		Processing:       att.state != models.StateIdle && !att.state.Terminal(),
		Message:          att.message,
		AmountMinorUnits: att.intent.AmountMinorUnits,
		ReceiptURL:       att.receiptURL,
		RedirectTo:       att.redirectTo,
	}
	if att.state == models.StateAwaitingGateway {
		checkout := att.checkout
		status.Checkout = &checkout
	}
	return status
}
