package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentIntent(t *testing.T) {
	var gotForm map[string]string
	var gotKey, gotUser string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		gotKey = r.Header.Get("Idempotency-Key")
		gotUser, _, _ = r.BasicAuth()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "pi_123",
			"amount":        4999,
			"currency":      "usd",
			"status":        "requires_payment_method",
			"client_secret": "pi_123_secret_abc",
		})
	}))
	defer server.Close()

	client := NewStripeClient(server.URL, "sk_test_key")
	intent, err := client.CreatePaymentIntent(context.Background(), IntentParams{
		Amount:         4999,
		Currency:       "usd",
		Metadata:       map[string]string{"order_id": "7", "order_number": "BRX-ABC"},
		IdempotencyKey: "BRX-ABC",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, "4999", gotForm["amount"])
	assert.Equal(t, "usd", gotForm["currency"])
	assert.Equal(t, "7", gotForm["metadata[order_id]"])
	assert.Equal(t, "BRX-ABC", gotForm["metadata[order_number]"])
	assert.Equal(t, "BRX-ABC", gotKey)
	assert.Equal(t, "sk_test_key", gotUser)
}

func TestCreatePaymentIntentError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Amount must be at least 50 cents"}}`))
	}))
	defer server.Close()

	client := NewStripeClient(server.URL, "sk_test_key")
	_, err := client.CreatePaymentIntent(context.Background(), IntentParams{Amount: 10, Currency: "usd"})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Amount must be at least 50 cents", apiErr.Message)
}

func TestCreateRefund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_9", r.PostForm.Get("payment_intent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"re_1","amount":1000,"status":"succeeded","payment_intent":"pi_9"}`))
	}))
	defer server.Close()

	refund, err := NewStripeClient(server.URL, "sk").CreateRefund(context.Background(), "pi_9", "refund-BRX-1")
	require.NoError(t, err)
	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, int64(1000), refund.Amount)
}
