package payments

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

// SignatureTolerance is how old a webhook timestamp may be
const SignatureTolerance = 5 * time.Minute

// Stripe event types handled by the webhook receiver
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventPaymentCanceled  = "payment_intent.canceled"
	EventChargeRefunded   = "charge.refunded"
)

var (
	ErrMissingSignature = webhook.ErrNotSigned
	ErrInvalidHeader    = webhook.ErrInvalidHeader
	ErrInvalidSignature = webhook.ErrNoValidSignature
	ErrStaleTimestamp   = webhook.ErrTooOld
)

// Event is a Stripe webhook envelope
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Charge is the subset of a Stripe charge carried by charge.refunded
type Charge struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	Amount         int64  `json:"amount"`
	AmountRefunded int64  `json:"amount_refunded"`
	Refunded       bool   `json:"refunded"`
}

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") against payload.
// The event body is decoded separately by ParseEvent so deliveries are not tied
// to the API version pinned by stripe-go.
func VerifySignature(payload []byte, header, secret string) error {
	return webhook.ValidatePayloadWithTolerance(payload, header, secret, SignatureTolerance)
}

// SignatureHeader builds a Stripe-Signature header, used by tests and local tooling
func SignatureHeader(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

// ParseEvent decodes a webhook body
func ParseEvent(payload []byte) (*Event, error) {
	event := &Event{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, err
	}
	if event.ID == "" || event.Type == "" {
		return nil, errors.New("event id or type missing")
	}
	return event, nil
}

func (e *Event) PaymentIntent() (*PaymentIntent, error) {
	intent := &PaymentIntent{}
	if err := json.Unmarshal(e.Data.Object, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (e *Event) Charge() (*Charge, error) {
	charge := &Charge{}
	if err := json.Unmarshal(e.Data.Object, charge); err != nil {
		return nil, err
	}
	return charge, nil
}
