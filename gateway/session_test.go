package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/kunalverma25/khatapay/models"

	"github.com/stretchr/testify/assert"
)

func testResult() models.GatewayResult {
	return models.GatewayResult{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: "sig_1",
	}
}

func TestSessionResolvesOnce(t *testing.T) {
	session := NewSession(CheckoutOptions{OrderID: "order_1"})

	assert.True(t, session.Succeed(testResult()))
	// late events after resolution are no-ops
	assert.False(t, session.Fail("card declined"))
	assert.False(t, session.Dismiss())
	assert.False(t, session.Succeed(testResult()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	outcome, err := session.Await(ctx)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "order_1", outcome.Result.OrderID)
	assert.Equal(t, "pay_1", outcome.Result.PaymentID)
	assert.Equal(t, "sig_1", outcome.Result.Signature)
}

func TestSessionFailureCarriesDescription(t *testing.T) {
	session := NewSession(CheckoutOptions{})

	assert.True(t, session.Fail("card declined"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	outcome, err := session.Await(ctx)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeFailure, outcome.Kind)
	assert.Equal(t, "card declined", outcome.Description)
	assert.Nil(t, outcome.Result)
}

func TestSessionDismissal(t *testing.T) {
	session := NewSession(CheckoutOptions{})

	assert.True(t, session.Dismiss())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	outcome, err := session.Await(ctx)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDismissed, outcome.Kind)
}

func TestSessionAwaitHonorsContext(t *testing.T) {
	session := NewSession(CheckoutOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := session.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionAwaitAfterResolution(t *testing.T) {
	session := NewSession(CheckoutOptions{})
	session.Dismiss()

	// resolution delivered before Await still reaches it
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	outcome, err := session.Await(ctx)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeDismissed, outcome.Kind)
}

func TestRegistryLifecycle(t *testing.T) {
	registry := NewRegistry()

	opts := CheckoutOptions{OrderID: "order_1", AmountMinorUnits: 50000}
	session := registry.Open("attempt_1", opts)
	assert.Equal(t, opts, session.Options())

	found, ok := registry.Lookup("attempt_1")
	assert.True(t, ok)
	assert.Same(t, session, found)

	_, ok = registry.Lookup("attempt_2")
	assert.False(t, ok)

	registry.Close("attempt_1")
	_, ok = registry.Lookup("attempt_1")
	assert.False(t, ok)
}
