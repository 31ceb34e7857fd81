package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAmountMinorUnits(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "whole rupees with decimals", input: "500.00", want: 50000},
		{name: "whole rupees", input: "500", want: 50000},
		{name: "single decimal place", input: "0.5", want: 50},
		{name: "paise precision", input: "1.23", want: 123},
		{name: "fraction only", input: ".75", want: 75},
		{name: "surrounding whitespace", input: " 250 ", want: 25000},
		{name: "large amount", input: "123456.78", want: 12345678},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero with decimals", input: "0.00", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "two dots", input: "1.2.3", wantErr: true},
		{name: "three decimal places", input: "12.345", wantErr: true},
		{name: "lone dot", input: ".", wantErr: true},
		{name: "embedded space", input: "1 2", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmountMinorUnits(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPaymentIntentAmountMajorUnits(t *testing.T) {
	assert.Equal(t, "500.00", PaymentIntent{AmountMinorUnits: 50000}.AmountMajorUnits())
	assert.Equal(t, "0.05", PaymentIntent{AmountMinorUnits: 5}.AmountMajorUnits())
	assert.Equal(t, "1234.56", PaymentIntent{AmountMinorUnits: 123456}.AmountMajorUnits())
}

func TestPaymentIntentDate(t *testing.T) {
	intent := PaymentIntent{CreatedAt: time.Date(2025, 3, 9, 23, 45, 0, 0, time.UTC)}
	assert.Equal(t, "2025-03-09", intent.Date())
}

func TestPaymentStateTerminal(t *testing.T) {
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateOrderPending.Terminal())
	assert.False(t, StateAwaitingGateway.Terminal())
	assert.False(t, StateVerifying.Terminal())
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())
}

func TestPaymentStateCanAdvanceTo(t *testing.T) {
	// forward moves
	assert.True(t, StateIdle.CanAdvanceTo(StateOrderPending))
	assert.True(t, StateOrderPending.CanAdvanceTo(StateAwaitingGateway))
	assert.True(t, StateOrderPending.CanAdvanceTo(StateFailed))
	assert.True(t, StateAwaitingGateway.CanAdvanceTo(StateVerifying))
	assert.True(t, StateAwaitingGateway.CanAdvanceTo(StateCancelled))
	assert.True(t, StateVerifying.CanAdvanceTo(StateSucceeded))

	// backward and lateral moves are refused
	assert.False(t, StateAwaitingGateway.CanAdvanceTo(StateOrderPending))
	assert.False(t, StateVerifying.CanAdvanceTo(StateAwaitingGateway))
	assert.False(t, StateOrderPending.CanAdvanceTo(StateOrderPending))

	// nothing leaves a terminal state
	assert.False(t, StateSucceeded.CanAdvanceTo(StateFailed))
	assert.False(t, StateFailed.CanAdvanceTo(StateSucceeded))
	assert.False(t, StateCancelled.CanAdvanceTo(StateFailed))
}
