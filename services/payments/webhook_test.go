package payments

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	secret := "whsec_test"
	now := time.Now()

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"valid", SignatureHeader(payload, secret, now), nil},
		{"missing", "", ErrMissingSignature},
		{"wrong secret", SignatureHeader(payload, "other", now), ErrInvalidSignature},
		{"stale", SignatureHeader(payload, secret, now.Add(-10*time.Minute)), ErrStaleTimestamp},
		{"no v1", "t=" + strconv.FormatInt(now.Unix(), 10), ErrInvalidSignature},
		{"bad timestamp", "t=yesterday,v1=00", ErrInvalidHeader},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(payload, tc.header, secret)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	header := SignatureHeader([]byte(`{"amount":100}`), "s", time.Now())
	assert.ErrorIs(t, VerifySignature([]byte(`{"amount":1}`), header, "s"), ErrInvalidSignature)
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","amount":2500,"metadata":{"order_id":"12"}}}}`)
	event, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, event.Type)

	intent, err := event.PaymentIntent()
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, int64(2500), intent.Amount)
	assert.Equal(t, "12", intent.Metadata["order_id"])

	_, err = ParseEvent([]byte(`{"type":"x"}`))
	assert.Error(t, err)
}
