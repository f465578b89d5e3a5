package orders

import "brainix/models"

// Line is one course being priced
type Line struct {
	CourseID      uint   `json:"course_id"`
	InstructorID  uint   `json:"instructor_id"`
	Title         string `json:"title"`
	OriginalPrice int64  `json:"original_price"`
	Price         int64  `json:"price"`
	Eligible      bool   `json:"eligible"`
}

// Quote is the priced cart. Total == Subtotal - Discount == sum of line prices.
type Quote struct {
	Lines    []Line         `json:"lines"`
	Subtotal int64          `json:"subtotal"`
	Discount int64          `json:"discount"`
	Total    int64          `json:"total"`
	Coupon   *models.Coupon `json:"coupon,omitempty"`
}

// CouponDiscount computes the discount a coupon grants on an eligible amount.
// Percentages floor to the cent; fixed amounts cap at the eligible amount.
func CouponDiscount(coupon models.Coupon, eligible int64) int64 {
	if eligible <= 0 {
		return 0
	}
	var discount int64
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		pct := coupon.DiscountValue
		if pct > 100 {
			pct = 100
		}
		discount = eligible * pct / 100
	case models.DiscountFixed:
		discount = coupon.DiscountValue
	}
	if discount < 0 {
		return 0
	}
	if discount > eligible {
		return eligible
	}
	return discount
}

// Allocate spreads discount over the eligible lines in proportion to their price.
// Rounding leftovers go to the last eligible line; no line drops below zero.
func Allocate(lines []Line, discount int64) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)

	var eligibleTotal int64
	last := -1
	for i, l := range out {
		if l.Eligible {
			eligibleTotal += l.OriginalPrice
			last = i
		}
		out[i].Price = l.OriginalPrice
	}
	if discount <= 0 || last < 0 || eligibleTotal <= 0 {
		return out
	}
	if discount > eligibleTotal {
		discount = eligibleTotal
	}

	shares := make([]int64, len(out))
	var allocated int64
	for i, l := range out {
		if !l.Eligible || i == last {
			continue
		}
		shares[i] = discount * l.OriginalPrice / eligibleTotal
		allocated += shares[i]
	}
	shares[last] = discount - allocated

	// the remainder can exceed a cheap last line; push the overflow back onto earlier lines
	overflow := shares[last] - out[last].OriginalPrice
	if overflow > 0 {
		shares[last] = out[last].OriginalPrice
		for i := last - 1; i >= 0 && overflow > 0; i-- {
			if !out[i].Eligible {
				continue
			}
			room := out[i].OriginalPrice - shares[i]
			if room > overflow {
				room = overflow
			}
			shares[i] += room
			overflow -= room
		}
	}

	for i := range out {
		out[i].Price = out[i].OriginalPrice - shares[i]
	}
	return out
}

// Price builds a Quote from lines and an optional coupon
func Price(lines []Line, coupon *models.Coupon) Quote {
	q := Quote{Coupon: coupon}
	var eligible int64
	for i := range lines {
		q.Subtotal += lines[i].OriginalPrice
		if coupon != nil && (coupon.CourseID == nil || *coupon.CourseID == lines[i].CourseID) {
			lines[i].Eligible = true
			eligible += lines[i].OriginalPrice
		} else {
			lines[i].Eligible = false
		}
	}
	if coupon != nil {
		q.Discount = CouponDiscount(*coupon, eligible)
	}
	q.Lines = Allocate(lines, q.Discount)
	for _, l := range q.Lines {
		q.Total += l.Price
	}
	return q
}
