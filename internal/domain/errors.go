package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidAmount        = errors.New("amount below minimum")
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")
	ErrSignatureInvalid     = errors.New("webhook signature invalid")
	ErrMalformedEvent       = errors.New("malformed gateway event")
)
