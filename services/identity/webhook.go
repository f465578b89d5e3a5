package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

// Clerk event types handled by the webhook receiver
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

var (
	ErrMissingHeaders   = errors.New("missing svix headers")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidSecret    = errors.New("webhook secret is not valid base64")
)

// Event is a Clerk webhook envelope
type Event struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData is the user object carried by user.* events
type UserData struct {
	ID                    string                 `json:"id"`
	FirstName             string                 `json:"first_name"`
	LastName              string                 `json:"last_name"`
	ImageURL              string                 `json:"image_url"`
	PrimaryEmailAddressID string                 `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress         `json:"email_addresses"`
	PublicMetadata        map[string]interface{} `json:"public_metadata"`
	Deleted               bool                   `json:"deleted"`
}

// PrimaryEmail returns the primary address, or the first one when none is flagged
func (u UserData) PrimaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Role reads public_metadata.role; unknown values are returned as-is for the caller to validate
func (u UserData) Role() string {
	if u.PublicMetadata == nil {
		return ""
	}
	role, _ := u.PublicMetadata["role"].(string)
	return strings.ToLower(strings.TrimSpace(role))
}

func ParseEvent(payload []byte) (*Event, error) {
	event := &Event{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, errors.New("event type missing")
	}
	return event, nil
}

func (e *Event) User() (*UserData, error) {
	user := &UserData{}
	if err := json.Unmarshal(e.Data, user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, errors.New("user id missing")
	}
	return user, nil
}

// Verify checks a Svix signed delivery. secret may carry the "whsec_" prefix.
// Deliveries older or newer than five minutes are refused.
func Verify(secret string, header http.Header, body []byte) error {
	if header.Get("svix-id") == "" || header.Get("svix-timestamp") == "" || header.Get("svix-signature") == "" {
		return ErrMissingHeaders
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return ErrInvalidSecret
	}
	if err := wh.Verify(body, header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// Sign returns a "v1,<base64>" svix-signature entry for a delivery
func Sign(secret, id string, at time.Time, body []byte) (string, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return "", ErrInvalidSecret
	}
	return wh.Sign(id, at, body)
}
