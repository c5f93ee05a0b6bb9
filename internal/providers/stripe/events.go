package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
)

// EventKind enumerates the confirmation kinds this service reconciles.
// Everything else maps to EventKindUnknown and is acknowledged untouched so
// the gateway never retries irrelevant deliveries.
type EventKind string

const (
	EventKindUnknown          EventKind = ""
	EventCheckoutCompleted    EventKind = "checkout.session.completed"
	EventPaymentIntentSucceed EventKind = "payment_intent.succeeded"
)

// ParseEventKind maps the wire type string onto the closed kind set.
func ParseEventKind(raw string) EventKind {
	switch EventKind(raw) {
	case EventCheckoutCompleted:
		return EventCheckoutCompleted
	case EventPaymentIntentSucceed:
		return EventPaymentIntentSucceed
	default:
		return EventKindUnknown
	}
}

// Event is a verified gateway callback. Object is the raw payload object for
// the event's kind; callers decode it with the kind-specific helpers below.
type Event struct {
	ID     string
	Kind   EventKind
	Object json.RawMessage
}

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

func parseEvent(payload []byte) (*Event, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}
	return &Event{
		ID:     envelope.ID,
		Kind:   ParseEventKind(envelope.Type),
		Object: envelope.Data.Object,
	}, nil
}

// SessionObject is the payload of a checkout.session.completed event.
type SessionObject struct {
	ID              string            `json:"id"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
	Metadata        map[string]string `json:"metadata"`
}

// CustomerDetails carries the email and name collected by the hosted checkout.
type CustomerDetails struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DecodeSession decodes the event object as a checkout session.
func (e *Event) DecodeSession() (*SessionObject, error) {
	var obj SessionObject
	if err := json.Unmarshal(e.Object, &obj); err != nil {
		return nil, fmt.Errorf("%w: session object: %v", domain.ErrMalformedEvent, err)
	}
	return &obj, nil
}

// IntentObject is the payload of a payment_intent.succeeded event.
type IntentObject struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// DecodeIntent decodes the event object as a payment intent.
func (e *Event) DecodeIntent() (*IntentObject, error) {
	var obj IntentObject
	if err := json.Unmarshal(e.Object, &obj); err != nil {
		return nil, fmt.Errorf("%w: intent object: %v", domain.ErrMalformedEvent, err)
	}
	return &obj, nil
}
