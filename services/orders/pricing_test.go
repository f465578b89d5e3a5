package orders

import (
	"testing"

	"brainix/models"

	"github.com/stretchr/testify/assert"
)

func sum(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Price
	}
	return total
}

func TestAllocate(t *testing.T) {
	cases := []struct {
		name     string
		prices   []int64
		eligible []bool
		discount int64
		want     []int64
	}{
		{"proportional", []int64{1000, 3000}, []bool{true, true}, 400, []int64{900, 2700}},
		{"remainder on last", []int64{999, 999, 999}, []bool{true, true, true}, 100, []int64{966, 966, 965}},
		{"only eligible lines", []int64{1000, 2000}, []bool{false, true}, 500, []int64{1000, 1500}},
		{"cheap last line overflows", []int64{5, 5, 1}, []bool{true, true, true}, 10, []int64{1, 0, 0}},
		{"discount capped", []int64{100}, []bool{true}, 500, []int64{0}},
		{"no discount", []int64{100, 200}, []bool{true, true}, 0, []int64{100, 200}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := make([]Line, len(tc.prices))
			for i, p := range tc.prices {
				lines[i] = Line{CourseID: uint(i + 1), OriginalPrice: p, Eligible: tc.eligible[i]}
			}
			out := Allocate(lines, tc.discount)

			got := make([]int64, len(out))
			var subtotal int64
			for i, l := range out {
				got[i] = l.Price
				subtotal += l.OriginalPrice
				assert.GreaterOrEqual(t, l.Price, int64(0))
				assert.LessOrEqual(t, l.Price, l.OriginalPrice)
			}
			assert.Equal(t, tc.want, got)

			applied := tc.discount
			if applied > subtotal {
				applied = subtotal
			}
			assert.Equal(t, subtotal-applied, sum(out))
		})
	}
}

func TestCouponDiscount(t *testing.T) {
	pct := models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 15}
	assert.Equal(t, int64(149), CouponDiscount(pct, 999))
	assert.Equal(t, int64(0), CouponDiscount(pct, 0))

	all := models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 150}
	assert.Equal(t, int64(999), CouponDiscount(all, 999))

	fixed := models.Coupon{DiscountType: models.DiscountFixed, DiscountValue: 2500}
	assert.Equal(t, int64(2500), CouponDiscount(fixed, 4000))
	assert.Equal(t, int64(1000), CouponDiscount(fixed, 1000))
}

func TestPriceRestrictedCoupon(t *testing.T) {
	courseID := uint(2)
	coupon := &models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 50, CourseID: &courseID}
	q := Price([]Line{{CourseID: 1, OriginalPrice: 1000}, {CourseID: 2, OriginalPrice: 3000}}, coupon)

	assert.Equal(t, int64(4000), q.Subtotal)
	assert.Equal(t, int64(1500), q.Discount)
	assert.Equal(t, int64(2500), q.Total)
	assert.Equal(t, q.Subtotal-q.Discount, sum(q.Lines))
	assert.Equal(t, int64(1000), q.Lines[0].Price)
	assert.False(t, q.Lines[0].Eligible)
}

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber()
	assert.Regexp(t, `^BRX-[0-9A-F]{10}$`, n)
	assert.NotEqual(t, n, NewOrderNumber())
}
