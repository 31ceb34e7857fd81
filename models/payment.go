package models

import (
	"fmt"
	"strings"
	"time"
)

// PaymentState tracks a payment attempt through the reconciliation flow.
type PaymentState string

const (
	StateIdle            PaymentState = "Idle"
	StateOrderPending    PaymentState = "OrderPending"
	StateAwaitingGateway PaymentState = "AwaitingGateway"
	StateVerifying       PaymentState = "Verifying"
	StateSucceeded       PaymentState = "Succeeded"
	StateFailed          PaymentState = "Failed"
	StateCancelled       PaymentState = "Cancelled"
)

// stateRank orders the states so transitions can only move forward.
// Terminal states share the highest rank; there is no path out of them.
var stateRank = map[PaymentState]int{
	StateIdle:            0,
	StateOrderPending:    1,
	StateAwaitingGateway: 2,
	StateVerifying:       3,
	StateSucceeded:       4,
	StateFailed:          4,
	StateCancelled:       4,
}

// Terminal reports whether the state ends the attempt.
func (s PaymentState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// CanAdvanceTo reports whether a transition from s to next moves forward.
func (s PaymentState) CanAdvanceTo(next PaymentState) bool {
	from, ok := stateRank[s]
	if !ok {
		return false
	}
	to, ok := stateRank[next]
	if !ok {
		return false
	}
	return !s.Terminal() && to > from
}

// PaymentIntent is the immutable record of what the customer asked to pay.
// Gateway and backend responses are always checked against it, never the
// other way around.
type PaymentIntent struct {
	CustomerID       string
	AmountMinorUnits int64
	Currency         string
	CreatedAt        time.Time
}

// NewPaymentIntent records a payment request in minor currency units (paise).
func NewPaymentIntent(customerID string, amountMinorUnits int64, currency string) PaymentIntent {
	return PaymentIntent{
		CustomerID:       customerID,
		AmountMinorUnits: amountMinorUnits,
		Currency:         currency,
		CreatedAt:        time.Now(),
	}
}

// AmountMajorUnits renders the amount in rupees with two decimal places,
// e.g. 50000 paise -> "500.00".
func (p PaymentIntent) AmountMajorUnits() string {
	return fmt.Sprintf("%d.%02d", p.AmountMinorUnits/100, p.AmountMinorUnits%100)
}

// Date renders the intent's creation date as YYYY-MM-DD.
func (p PaymentIntent) Date() string {
	return p.CreatedAt.Format("2006-01-02")
}

// GatewayOrder is the backend's acknowledgement of an intent. OrderID is
// opaque and must be passed to the widget and to verification verbatim.
type GatewayOrder struct {
	OrderID string
	Intent  PaymentIntent
	Key     string
}

// GatewayResult is the signed payload the hosted widget produces on success.
// It is opaque to this service beyond presence checks and is forwarded to
// verification unmodified.
type GatewayResult struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerificationOutcome is the backend's authoritative answer for a gateway
// result. Once obtained the flow never retries verification.
type VerificationOutcome struct {
	Verified   bool
	ReceiptURL string
	Message    string
}

// CustomerProfile identifies the ledger account a payment credits.
type CustomerProfile struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// maxAmountMinorUnits caps parsed amounts well inside exact int64 range.
const maxAmountMinorUnits = int64(1) << 50

// ParseAmountMinorUnits converts a user-entered rupee amount like "500.00"
// into paise exactly, without passing through floating point. At most two
// decimal places are accepted and the result must be positive.
func ParseAmountMinorUnits(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		if strings.IndexByte(frac, '.') >= 0 {
			return 0, fmt.Errorf("invalid amount %q", raw)
		}
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", raw)
	}

	var minor int64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount %q", raw)
		}
		minor = minor*10 + int64(r-'0')
		if minor > maxAmountMinorUnits {
			return 0, fmt.Errorf("amount %q is too large", raw)
		}
	}
	minor *= 100

	scale := int64(10)
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount %q", raw)
		}
		minor += int64(r-'0') * scale
		scale /= 10
	}

	if minor <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return minor, nil
}
