// Package payments talks to the Stripe REST API and decodes its webhooks.
package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// PaymentIntent is the subset of a Stripe payment intent the service reads
type PaymentIntent struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	Metadata     map[string]string `json:"metadata"`
}

// Refund is the subset of a Stripe refund the service reads
type Refund struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	PaymentIntent string `json:"payment_intent"`
}

// IntentParams describes a payment intent to create
type IntentParams struct {
	Amount         int64
	Currency       string
	Metadata       map[string]string
	Description    string
	ReceiptEmail   string
	IdempotencyKey string
}

// Gateway is the payment provider used by checkout and refunds
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, id string) error
	CreateRefund(ctx context.Context, paymentIntentID, idempotencyKey string) (*Refund, error)
}

// APIError is the error body Stripe returns on 4xx/5xx
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: %d %s: %s", e.StatusCode, e.Type, e.Message)
}

type errorBody struct {
	Error APIError `json:"error"`
}

type StripeClient struct {
	client *resty.Client
}

var _ Gateway = (*StripeClient)(nil)

func NewStripeClient(apiURL, secretKey string) *StripeClient {
	client := resty.New().
		SetBaseURL(apiURL).
		SetBasicAuth(secretKey, "").
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	return &StripeClient{client: client}
}

func (s *StripeClient) CreatePaymentIntent(ctx context.Context, params IntentParams) (*PaymentIntent, error) {
	form := map[string]string{
		"amount":                              strconv.FormatInt(params.Amount, 10),
		"currency":                            params.Currency,
		"automatic_payment_methods[enabled]": "true",
	}
	if params.Description != "" {
		form["description"] = params.Description
	}
	if params.ReceiptEmail != "" {
		form["receipt_email"] = params.ReceiptEmail
	}
	for k, v := range params.Metadata {
		form["metadata["+k+"]"] = v
	}

	intent := &PaymentIntent{}
	req := s.client.R().SetContext(ctx).SetFormData(form).SetResult(intent)
	if params.IdempotencyKey != "" {
		req.SetHeader("Idempotency-Key", params.IdempotencyKey)
	}
	if err := s.do(req, resty.MethodPost, "/v1/payment_intents"); err != nil {
		return nil, err
	}
	return intent, nil
}

func (s *StripeClient) CancelPaymentIntent(ctx context.Context, id string) error {
	req := s.client.R().SetContext(ctx).SetPathParam("id", id)
	return s.do(req, resty.MethodPost, "/v1/payment_intents/{id}/cancel")
}

func (s *StripeClient) CreateRefund(ctx context.Context, paymentIntentID, idempotencyKey string) (*Refund, error) {
	refund := &Refund{}
	req := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"payment_intent": paymentIntentID}).
		SetResult(refund)
	if idempotencyKey != "" {
		req.SetHeader("Idempotency-Key", idempotencyKey)
	}
	if err := s.do(req, resty.MethodPost, "/v1/refunds"); err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *StripeClient) do(req *resty.Request, method, url string) error {
	body := &errorBody{}
	resp, err := req.SetError(body).Execute(method, url)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	if resp.IsError() {
		body.Error.StatusCode = resp.StatusCode()
		if body.Error.Message == "" {
			body.Error.Message = string(resp.Body())
		}
		return &body.Error
	}
	return nil
}
