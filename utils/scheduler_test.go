package utils

import (
	"testing"
	"time"

	"brainix/internal/testutils"
	"brainix/models"
	"brainix/services"
	"brainix/services/email"
	"brainix/services/identity"
	"brainix/services/payments"
	"brainix/services/search"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronSpecsParse(t *testing.T) {
	for _, spec := range []string{StaleOrdersSpec, CouponExpirySpec, ReconcileSpec} {
		_, err := cron.ParseStandard(spec)
		assert.NoError(t, err, spec)
	}
}

func TestScheduledJobs(t *testing.T) {
	db := testutils.SetupDB(t)
	gateway := &payments.FakeGateway{}
	services.App = services.Wire(&services.Registry{
		Payments: gateway,
		Identity: identity.LogProvider{},
		Mailer:   &email.Recorder{},
		Search:   search.Noop{},
	}, testutils.Config(), db)

	user := testutils.CreateUser(t, db, models.RoleStudent)
	stale := models.Order{OrderNumber: "ORD-STALE", UserID: user.ID, Total: 100, Status: models.OrderPending, PaymentIntentID: "pi_stale"}
	fresh := models.Order{OrderNumber: "ORD-FRESH", UserID: user.ID, Total: 100, Status: models.OrderPending}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Model(&stale).UpdateColumn("created_at", time.Now().Add(-48*time.Hour)).Error)

	past := time.Now().Add(-time.Hour)
	coupon := models.Coupon{Code: "OLD10", DiscountType: models.DiscountPercentage, DiscountValue: 10, IsActive: true, ValidUntil: &past}
	require.NoError(t, db.Create(&coupon).Error)

	CancelStaleOrders(24 * time.Hour)
	DeactivateExpiredCoupons()
	ReconcileInstructorStats()

	require.NoError(t, db.First(&stale, stale.ID).Error)
	require.NoError(t, db.First(&fresh, fresh.ID).Error)
	assert.Equal(t, models.OrderCancelled, stale.Status)
	assert.Equal(t, models.OrderPending, fresh.Status)

	require.NoError(t, db.First(&coupon, coupon.ID).Error)
	assert.False(t, coupon.IsActive)
}

func TestPaginated(t *testing.T) {
	page := Paginated("items", []int{1, 2}, 12, 2, 2)
	assert.Equal(t, []int{1, 2}, page["items"])
	assert.Equal(t, fiber.Map{"total": int64(12), "page": 2, "limit": 2}, page["pagination"])
}
