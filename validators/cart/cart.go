package cartValidator

import (
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
)

type AddItemRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
}

type CouponRequest struct {
	Code string `json:"code" validate:"required,min=3,max=64"`
}

type CheckoutRequest struct {
	CouponCode string `json:"coupon_code" validate:"omitempty,min=3,max=64"`
}

func AddItem() fiber.Handler {
	return validators.Body[AddItemRequest]("validatedCartItem")
}

func ApplyCoupon() fiber.Handler {
	return validators.Body[CouponRequest]("validatedCoupon")
}

// Checkout accepts an empty body
func Checkout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			c.Locals("validatedCheckout", &CheckoutRequest{})
			return c.Next()
		}
		return validators.Body[CheckoutRequest]("validatedCheckout")(c)
	}
}
