package payments

import (
	"context"
	"fmt"
	"sync"
)

// FakeGateway records calls in memory; used in development without a Stripe key and in tests
type FakeGateway struct {
	mu        sync.Mutex
	Intents   []IntentParams
	Cancelled []string
	Refunded  []string
	Err       error
}

var _ Gateway = (*FakeGateway)(nil)

func (f *FakeGateway) CreatePaymentIntent(_ context.Context, params IntentParams) (*PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Intents = append(f.Intents, params)
	id := fmt.Sprintf("pi_fake_%d", len(f.Intents))
	return &PaymentIntent{
		ID:           id,
		Object:       "payment_intent",
		Amount:       params.Amount,
		Currency:     params.Currency,
		Status:       "requires_payment_method",
		ClientSecret: id + "_secret",
		Metadata:     params.Metadata,
	}, nil
}

func (f *FakeGateway) CancelPaymentIntent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Cancelled = append(f.Cancelled, id)
	return nil
}

func (f *FakeGateway) CreateRefund(_ context.Context, paymentIntentID, _ string) (*Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Refunded = append(f.Refunded, paymentIntentID)
	return &Refund{ID: "re_fake_" + paymentIntentID, PaymentIntent: paymentIntentID, Status: "succeeded"}, nil
}
