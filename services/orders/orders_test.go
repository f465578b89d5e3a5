package orders

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"brainix/apperrors"
	"brainix/internal/testutils"
	"brainix/models"
	"brainix/services/email"
	"brainix/services/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	svc        *Service
	gateway    *payments.FakeGateway
	mailer     *email.Recorder
	instructor models.User
	student    models.User
}

func setup(t *testing.T) *fixture {
	db := testutils.SetupDB(t)
	f := &fixture{
		db:      db,
		gateway: &payments.FakeGateway{},
		mailer:  &email.Recorder{},
	}
	f.svc = &Service{DB: db, Payments: f.gateway, Mailer: f.mailer, Currency: "usd", PublicURL: "http://localhost"}
	f.instructor = testutils.CreateUser(t, db, models.RoleInstructor)
	f.student = testutils.CreateUser(t, db, models.RoleStudent)
	return f
}

func (f *fixture) course(t *testing.T, price int64) models.Course {
	return testutils.CreateCourse(t, f.db, f.instructor.ID, testutils.CourseOptions{Price: price, Lessons: 2})
}

func (f *fixture) addToCart(t *testing.T, courses ...models.Course) {
	for _, c := range courses {
		_, err := f.svc.AddToCart(f.student.ID, c.ID)
		require.NoError(t, err)
	}
}

func TestAddToCartRules(t *testing.T) {
	f := setup(t)
	course := f.course(t, 1000)
	draft := testutils.CreateCourse(t, f.db, f.instructor.ID, testutils.CourseOptions{Status: models.CourseStatusDraft})

	_, err := f.svc.AddToCart(f.student.ID, course.ID)
	require.NoError(t, err)

	_, err = f.svc.AddToCart(f.student.ID, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInCart)

	_, err = f.svc.AddToCart(f.student.ID, draft.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotPublished)

	_, err = f.svc.AddToCart(f.instructor.ID, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrOwnCourse)

	_, err = f.svc.AddToCart(f.student.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	other := f.course(t, 500)
	testutils.Enroll(t, f.db, f.student.ID, other.ID)
	_, err = f.svc.AddToCart(f.student.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	removed, err := f.svc.RemoveFromCart(f.student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	// hard delete lets the course be added again
	_, err = f.svc.AddToCart(f.student.ID, course.ID)
	assert.NoError(t, err)
}

func TestCartUsesLivePrices(t *testing.T) {
	f := setup(t)
	course := f.course(t, 2000)
	f.addToCart(t, course)

	require.NoError(t, f.db.Model(&models.Course{}).Where("id = ?", course.ID).Update("discount_price", 1500).Error)

	view, err := f.svc.Cart(f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)
	assert.Equal(t, int64(1500), view.Subtotal)
	assert.Equal(t, int64(500), view.Savings)
	assert.Equal(t, int64(2000), view.Items[0].PriceAtAdd)
}

func TestValidateCoupon(t *testing.T) {
	f := setup(t)
	course := f.course(t, 5000)
	lines := []Line{{CourseID: course.ID, OriginalPrice: 5000}}
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	other := course.ID + 100

	coupons := []models.Coupon{
		{Code: "GOOD", DiscountType: models.DiscountPercentage, DiscountValue: 10},
		{Code: "EXPIRED", DiscountType: models.DiscountFixed, DiscountValue: 100, ValidUntil: &past},
		{Code: "LATER", DiscountType: models.DiscountFixed, DiscountValue: 100, ValidFrom: &future},
		{Code: "USEDUP", DiscountType: models.DiscountFixed, DiscountValue: 100, MaxUses: testutils.Int(1), UsedCount: 1},
		{Code: "BIGSPEND", DiscountType: models.DiscountFixed, DiscountValue: 100, MinOrderAmount: 10000},
		{Code: "OTHERCOURSE", DiscountType: models.DiscountFixed, DiscountValue: 100, CourseID: &other},
	}
	for i := range coupons {
		require.NoError(t, f.db.Create(&coupons[i]).Error)
	}

	cases := map[string]error{
		" good ":      nil,
		"missing":     apperrors.ErrCouponInvalid,
		"expired":     apperrors.ErrCouponInvalid,
		"later":       apperrors.ErrCouponInvalid,
		"usedup":      apperrors.ErrCouponInvalid,
		"bigspend":    apperrors.ErrCouponMinimum,
		"othercourse": apperrors.ErrCouponNotEligible,
	}
	for code, want := range cases {
		coupon, err := ValidateCoupon(f.db, code, f.student.ID, lines, now)
		if want == nil {
			require.NoError(t, err, code)
			assert.Equal(t, "GOOD", coupon.Code)
		} else {
			assert.ErrorIs(t, err, want, code)
		}
	}
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	f := setup(t)
	a := f.course(t, 3000)
	b := f.course(t, 1000)
	f.addToCart(t, a, b)
	require.NoError(t, f.db.Create(&models.Coupon{Code: "SAVE25", DiscountType: models.DiscountPercentage, DiscountValue: 25}).Error)

	first, err := f.svc.Checkout(context.Background(), f.student, "")
	require.NoError(t, err)

	result, err := f.svc.Checkout(context.Background(), f.student, "save25")
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, int64(4000), order.Subtotal)
	assert.Equal(t, int64(1000), order.Discount)
	assert.Equal(t, int64(3000), order.Total)
	assert.Equal(t, int64(3000), result.PublishableTotal)
	assert.NotEmpty(t, result.ClientSecret)
	assert.False(t, result.Fulfilled)

	var items []models.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Find(&items).Error)
	var itemTotal int64
	for _, item := range items {
		itemTotal += item.Price
		assert.Equal(t, f.instructor.ID, item.InstructorID)
	}
	assert.Equal(t, order.Total, itemTotal)

	require.Len(t, f.gateway.Intents, 2)
	params := f.gateway.Intents[1]
	assert.Equal(t, int64(3000), params.Amount)
	assert.Equal(t, order.OrderNumber, params.IdempotencyKey)
	assert.Equal(t, order.OrderNumber, params.Metadata["order_number"])

	var previous models.Order
	require.NoError(t, f.db.First(&previous, first.Order.ID).Error)
	assert.Equal(t, models.OrderCancelled, previous.Status)
	assert.Equal(t, []string{first.Order.PaymentIntentID}, f.gateway.Cancelled)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Checkout(context.Background(), f.student, "")
	assert.ErrorIs(t, err, apperrors.ErrCartEmpty)
}

func TestCheckoutGatewayFailureFailsOrder(t *testing.T) {
	f := setup(t)
	f.addToCart(t, f.course(t, 1000))
	f.gateway.Err = errors.New("stripe down")

	_, err := f.svc.Checkout(context.Background(), f.student, "")
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.Status(err))

	var order models.Order
	require.NoError(t, f.db.Where("user_id = ?", f.student.ID).First(&order).Error)
	assert.Equal(t, models.OrderFailed, order.Status)
}

func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

// failUpdate makes single-column updates setting column to value fail
func failUpdate(t *testing.T, db *gorm.DB, column string, value interface{}) {
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_"+column, func(tx *gorm.DB) {
		if values, ok := tx.Statement.Dest.(map[string]interface{}); ok && len(values) == 1 && values[column] == value {
			tx.AddError(errors.New("database unavailable"))
		}
	})
	require.NoError(t, err)
}

func TestCheckoutGatewayFailureLogsUnsavedStatus(t *testing.T) {
	f := setup(t)
	f.addToCart(t, f.course(t, 1000))
	f.gateway.Err = errors.New("stripe down")
	failUpdate(t, f.db, "status", models.OrderFailed)
	logs := captureLog(t)

	_, err := f.svc.Checkout(context.Background(), f.student, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe down")
	assert.Contains(t, logs.String(), "[CHECKOUT] could not mark")

	var order models.Order
	require.NoError(t, f.db.Where("user_id = ?", f.student.ID).First(&order).Error)
	assert.Equal(t, models.OrderPending, order.Status)
}

func TestPaymentSucceededLogsUnattachedIntent(t *testing.T) {
	f := setup(t)
	f.addToCart(t, f.course(t, 2500))
	result, err := f.svc.Checkout(context.Background(), f.student, "")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", result.Order.ID).UpdateColumn("payment_intent_id", "").Error)

	failUpdate(t, f.db, "payment_intent_id", "pi_late")
	logs := captureLog(t)

	intent := &payments.PaymentIntent{ID: "pi_late", Amount: 2500, Metadata: map[string]string{"order_id": testutils.Itoa(result.Order.ID)}}
	require.NoError(t, f.svc.PaymentSucceeded(context.Background(), intent))
	assert.Contains(t, logs.String(), "[STRIPE-WEBHOOK] could not attach intent pi_late")

	var order models.Order
	require.NoError(t, f.db.First(&order, result.Order.ID).Error)
	assert.Equal(t, models.OrderCompleted, order.Status)
}

func TestFreeCheckoutFulfilsImmediately(t *testing.T) {
	f := setup(t)
	course := f.course(t, 2000)
	f.addToCart(t, course)
	require.NoError(t, f.db.Create(&models.Coupon{Code: "FREE", DiscountType: models.DiscountPercentage, DiscountValue: 100}).Error)

	result, err := f.svc.Checkout(context.Background(), f.student, "FREE")
	require.NoError(t, err)
	assert.True(t, result.Fulfilled)
	assert.Equal(t, models.OrderCompleted, result.Order.Status)
	assert.Empty(t, f.gateway.Intents)

	enrolled, err := HasAccess(f.db, f.student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestFulfilIsAtomicAndIdempotent(t *testing.T) {
	f := setup(t)
	course := f.course(t, 4000)
	f.addToCart(t, course)
	coupon := models.Coupon{Code: "TENOFF", DiscountType: models.DiscountFixed, DiscountValue: 1000, MaxUses: testutils.Int(5)}
	require.NoError(t, f.db.Create(&coupon).Error)

	result, err := f.svc.Checkout(context.Background(), f.student, "TENOFF")
	require.NoError(t, err)

	changed, err := f.svc.Fulfill(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.Fulfill(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	var order models.Order
	require.NoError(t, f.db.First(&order, result.Order.ID).Error)
	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.NotNil(t, order.PaidAt)

	var enrollments int64
	f.db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", f.student.ID, course.ID).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)

	var reloaded models.Course
	require.NoError(t, f.db.First(&reloaded, course.ID).Error)
	assert.Equal(t, 1, reloaded.TotalStudents)

	var instructor models.InstructorProfile
	require.NoError(t, f.db.Where("user_id = ?", f.instructor.ID).First(&instructor).Error)
	assert.Equal(t, 1, instructor.TotalStudents)
	assert.Equal(t, int64(3000), instructor.TotalRevenue)

	require.NoError(t, f.db.First(&coupon, coupon.ID).Error)
	assert.Equal(t, 1, coupon.UsedCount)
	var usages int64
	f.db.Model(&models.CouponUsage{}).Where("coupon_id = ?", coupon.ID).Count(&usages)
	assert.Equal(t, int64(1), usages)

	var student models.StudentProfile
	require.NoError(t, f.db.Where("user_id = ?", f.student.ID).First(&student).Error)
	assert.Equal(t, 1, student.TotalCoursesEnrolled)
	assert.Equal(t, int64(3000), student.TotalSpent)

	view, err := f.svc.Cart(f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.ItemCount)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Subject, order.OrderNumber)

	// the coupon cannot be reused by the same student
	_, err = ValidateCoupon(f.db, "TENOFF", f.student.ID, []Line{{CourseID: course.ID, OriginalPrice: 4000}}, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrCouponUsed)
}

func TestPaymentSucceededAmountMismatch(t *testing.T) {
	f := setup(t)
	f.addToCart(t, f.course(t, 2500))
	result, err := f.svc.Checkout(context.Background(), f.student, "")
	require.NoError(t, err)

	intent := &payments.PaymentIntent{ID: result.Order.PaymentIntentID, Amount: 100}
	require.NoError(t, f.svc.PaymentSucceeded(context.Background(), intent))

	var order models.Order
	require.NoError(t, f.db.First(&order, result.Order.ID).Error)
	assert.Equal(t, models.OrderFailed, order.Status)

	var enrollments int64
	f.db.Model(&models.Enrollment{}).Where("user_id = ?", f.student.ID).Count(&enrollments)
	assert.Zero(t, enrollments)
}

func TestPaymentSucceededByMetadata(t *testing.T) {
	f := setup(t)
	f.addToCart(t, f.course(t, 2500))
	result, err := f.svc.Checkout(context.Background(), f.student, "")
	require.NoError(t, err)

	intent := &payments.PaymentIntent{ID: "pi_other", Amount: 2500, Metadata: map[string]string{"order_id": "0"}}
	assert.ErrorIs(t, f.svc.PaymentSucceeded(context.Background(), intent), apperrors.ErrOrderNotFound)

	intent.Metadata["order_id"] = testutils.Itoa(result.Order.ID)
	require.NoError(t, f.svc.PaymentSucceeded(context.Background(), intent))

	var order models.Order
	require.NoError(t, f.db.First(&order, result.Order.ID).Error)
	assert.Equal(t, models.OrderCompleted, order.Status)
}

func TestPaymentFailedSendsEmail(t *testing.T) {
	f := setup(t)
	f.addToCart(t, f.course(t, 2500))
	result, err := f.svc.Checkout(context.Background(), f.student, "")
	require.NoError(t, err)

	intent := &payments.PaymentIntent{ID: result.Order.PaymentIntentID}
	require.NoError(t, f.svc.PaymentUnsuccessful(intent, models.OrderFailed))
	require.NoError(t, f.svc.PaymentUnsuccessful(intent, models.OrderFailed))

	var order models.Order
	require.NoError(t, f.db.First(&order, result.Order.ID).Error)
	assert.Equal(t, models.OrderFailed, order.Status)
	assert.Len(t, f.mailer.Sent(), 1)
}

func TestRefundRevokesAccess(t *testing.T) {
	f := setup(t)
	course := f.course(t, 2000)
	f.addToCart(t, course)
	result, err := f.svc.Checkout(context.Background(), f.student, "")
	require.NoError(t, err)
	_, err = f.svc.Fulfill(context.Background(), result.Order.ID)
	require.NoError(t, err)

	order, err := f.svc.RequestRefund(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderRefunded, order.Status)
	assert.Equal(t, []string{result.Order.PaymentIntentID}, f.gateway.Refunded)

	// the provider's charge.refunded event arrives afterwards and changes nothing
	require.NoError(t, f.svc.ChargeRefunded(context.Background(), &payments.Charge{PaymentIntent: result.Order.PaymentIntentID, Refunded: true}))

	enrolled, err := HasAccess(f.db, f.student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	var reloaded models.Course
	require.NoError(t, f.db.First(&reloaded, course.ID).Error)
	assert.Equal(t, 0, reloaded.TotalStudents)

	var student models.StudentProfile
	require.NoError(t, f.db.Where("user_id = ?", f.student.ID).First(&student).Error)
	assert.Equal(t, 0, student.TotalCoursesEnrolled)
	assert.Equal(t, int64(0), student.TotalSpent)

	_, err = f.svc.RequestRefund(context.Background(), result.Order.ID)
	assert.Equal(t, 400, apperrors.Status(err))

	// buying again reactivates the refunded enrollment
	f.addToCart(t, course)
	again, err := f.svc.Checkout(context.Background(), f.student, "")
	require.NoError(t, err)
	_, err = f.svc.Fulfill(context.Background(), again.Order.ID)
	require.NoError(t, err)
	enrolled, err = HasAccess(f.db, f.student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestCancelStalePending(t *testing.T) {
	f := setup(t)
	f.addToCart(t, f.course(t, 1000))
	result, err := f.svc.Checkout(context.Background(), f.student, "")
	require.NoError(t, err)

	cancelled, err := f.svc.CancelStalePending(context.Background(), time.Hour, time.Now())
	require.NoError(t, err)
	assert.Zero(t, cancelled)

	cancelled, err = f.svc.CancelStalePending(context.Background(), time.Hour, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	var order models.Order
	require.NoError(t, f.db.First(&order, result.Order.ID).Error)
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.Contains(t, f.gateway.Cancelled, result.Order.PaymentIntentID)
}

func TestDeactivateCoupons(t *testing.T) {
	f := setup(t)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Create(&models.Coupon{Code: "OLD", DiscountType: models.DiscountFixed, DiscountValue: 1, ValidUntil: &past}).Error)
	require.NoError(t, f.db.Create(&models.Coupon{Code: "FULL", DiscountType: models.DiscountFixed, DiscountValue: 1, MaxUses: testutils.Int(2), UsedCount: 2}).Error)
	require.NoError(t, f.db.Create(&models.Coupon{Code: "LIVE", DiscountType: models.DiscountFixed, DiscountValue: 1}).Error)

	n, err := f.svc.DeactivateCoupons(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var live models.Coupon
	require.NoError(t, f.db.Where("code = ?", "LIVE").First(&live).Error)
	assert.True(t, live.IsActive)
}
