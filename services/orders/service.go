// Package orders owns the purchase flow: cart, coupons, checkout, fulfilment and refunds.
package orders

import (
	"strings"

	"brainix/services/email"
	"brainix/services/payments"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB        *gorm.DB
	Payments  payments.Gateway
	Mailer    email.Sender
	Currency  string
	PublicURL string
}

// NewOrderNumber returns "BRX-" followed by 10 upper-case hex characters
func NewOrderNumber() string {
	return "BRX-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// NormalizeCode upper-cases and trims a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
