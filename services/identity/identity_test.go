package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("super-secret-signing-key"))

func signedHeader(t *testing.T, id string, at time.Time, body []byte) http.Header {
	sig, err := Sign(testSecret, id, at, body)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("svix-id", id)
	h.Set("svix-timestamp", strconv.FormatInt(at.Unix(), 10))
	h.Set("svix-signature", "v1,Ym9ndXM= "+sig)
	return h
}

func TestVerify(t *testing.T) {
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	now := time.Now()

	sig, err := Sign(testSecret, "msg_1", now, body)
	require.NoError(t, err)
	assert.Regexp(t, `^v1,`, sig)

	assert.NoError(t, Verify(testSecret, signedHeader(t, "msg_1", now, body), body))
	assert.ErrorIs(t, Verify(testSecret, http.Header{}, body), ErrMissingHeaders)
	assert.ErrorIs(t, Verify(testSecret, signedHeader(t, "msg_1", now.Add(-time.Hour), body), body), ErrInvalidSignature)
	assert.ErrorIs(t, Verify(testSecret, signedHeader(t, "msg_1", now.Add(time.Hour), body), body), ErrInvalidSignature)
	assert.ErrorIs(t, Verify(testSecret, signedHeader(t, "msg_1", now, body), []byte(`{}`)), ErrInvalidSignature)
	assert.ErrorIs(t, Verify("whsec_%%%", signedHeader(t, "msg_1", now, body), body), ErrInvalidSecret)

	// a delivery signed for another message id does not verify
	header := signedHeader(t, "msg_1", now, body)
	header.Set("svix-id", "msg_2")
	assert.ErrorIs(t, Verify(testSecret, header, body), ErrInvalidSignature)
}

func TestUserData(t *testing.T) {
	payload := []byte(`{"type":"user.updated","data":{
		"id":"user_2","first_name":"Ada","last_name":"Lovelace",
		"primary_email_address_id":"em_2",
		"email_addresses":[{"id":"em_1","email_address":"old@example.com"},{"id":"em_2","email_address":"ada@example.com"}],
		"public_metadata":{"role":" Instructor "}}}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	user, err := event.User()
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", user.PrimaryEmail())
	assert.Equal(t, "instructor", user.Role())
	assert.Equal(t, "", UserData{}.Role())
}

func TestUpdatePublicMetadata(t *testing.T) {
	var body map[string]map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/users/user_9/metadata", r.URL.Path)
		assert.Equal(t, "Bearer sk_clerk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user_9"}`))
	}))
	defer server.Close()

	client := NewClerkClient(server.URL, "sk_clerk")
	require.NoError(t, client.UpdatePublicMetadata(context.Background(), "user_9", map[string]interface{}{"role": "admin"}))
	assert.Equal(t, "admin", body["public_metadata"]["role"])
}

func TestUpdatePublicMetadataFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := NewClerkClient(server.URL, "sk").UpdatePublicMetadata(context.Background(), "missing", map[string]interface{}{"role": "admin"})
	assert.Error(t, err)
}
