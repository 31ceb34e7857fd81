package utils

import "fmt"

// ErrorKind classifies a payment-flow failure. Every failure in the flow is
// converted into exactly one kind before it reaches the user.
type ErrorKind string

const (
	// KindValidation - bad or missing local input, resolved before any network call
	KindValidation ErrorKind = "validation"
	// KindAuth - missing or rejected credential, user must log in again
	KindAuth ErrorKind = "auth"
	// KindTransport - a request could not complete
	KindTransport ErrorKind = "transport"
	// KindBusiness - well-formed backend response signaling failure
	KindBusiness ErrorKind = "business"
	// KindGateway - failure reported by the payment widget
	KindGateway ErrorKind = "gateway"
	// KindCancelled - the user closed the widget before completion
	KindCancelled ErrorKind = "cancelled"
)

// FlowError represents a classified payment-flow error
type FlowError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *FlowError) Unwrap() error {
	return e.Err
}

// NewFlowError creates a new FlowError
func NewFlowError(kind ErrorKind, message string, err error) *FlowError {
	return &FlowError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ValidationError creates a local-input error that never reaches the network
func ValidationError(message string) *FlowError {
	return NewFlowError(KindValidation, message, nil)
}

// AuthError creates a credential error
func AuthError(message string, err error) *FlowError {
	return NewFlowError(KindAuth, message, err)
}

// TransportError creates an error for a request that could not complete
func TransportError(message string, err error) *FlowError {
	return NewFlowError(KindTransport, message, err)
}

// BusinessError creates an error from a backend-reported failure
func BusinessError(message string) *FlowError {
	return NewFlowError(KindBusiness, message, nil)
}

// GatewayError creates an error from a widget-reported failure
func GatewayError(description string) *FlowError {
	return NewFlowError(KindGateway, description, nil)
}

// GetFlowError returns the FlowError if the error is one
func GetFlowError(err error) *FlowError {
	if flowErr, ok := err.(*FlowError); ok {
		return flowErr
	}
	return nil
}

// KindOf returns the error's kind, or KindTransport for unclassified errors
func KindOf(err error) ErrorKind {
	if flowErr := GetFlowError(err); flowErr != nil {
		return flowErr.Kind
	}
	return KindTransport
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return KindOf(err) == KindValidation
}

// IsAuthError checks if an error is a credential error
func IsAuthError(err error) bool {
	return KindOf(err) == KindAuth
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool {
	return KindOf(err) == KindTransport
}

// IsBusinessError checks if an error is a backend-reported failure
func IsBusinessError(err error) bool {
	return KindOf(err) == KindBusiness
}

// IsGatewayError checks if an error is a widget-reported failure
func IsGatewayError(err error) bool {
	return KindOf(err) == KindGateway
}

// MessageOf returns the error's user-facing message, falling back when the
// error carries none
func MessageOf(err error, fallback string) string {
	if flowErr := GetFlowError(err); flowErr != nil && flowErr.Message != "" {
		return flowErr.Message
	}
	return fallback
}
