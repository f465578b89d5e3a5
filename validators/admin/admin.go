package adminValidator

import (
	"time"

	"brainix/middleware"
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
)

type UserListQuery struct {
	validators.Pagination
	Role   string `query:"role" validate:"omitempty,oneof=student instructor admin"`
	Search string `query:"search" validate:"max=100"`
}

func UserList() fiber.Handler {
	return validators.Query[UserListQuery]("validatedUserList", func(q *UserListQuery) { q.DefaultPage() })
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student instructor admin"`
}

func AssignRole() fiber.Handler {
	return validators.Body[RoleRequest]("validatedRole")
}

type CouponRequest struct {
	Code           string     `json:"code" validate:"required,min=3,max=64,alphanum"`
	Description    string     `json:"description" validate:"max=255"`
	DiscountType   string     `json:"discount_type" validate:"required,oneof=PERCENTAGE FIXED"`
	DiscountValue  int64      `json:"discount_value" validate:"required,gt=0"`
	MaxUses        *int       `json:"max_uses" validate:"omitempty,gt=0"`
	MinOrderAmount int64      `json:"min_order_amount" validate:"gte=0"`
	ValidFrom      *time.Time `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until"`
	CourseID       *uint      `json:"course_id" validate:"omitempty,gt=0"`
	IsActive       *bool      `json:"is_active"`
}

func couponRules(reqData *CouponRequest, errors map[string]string) {
	if reqData.DiscountType == "PERCENTAGE" && reqData.DiscountValue > 100 {
		errors["discount_value"] = "Percentage discount cannot exceed 100!"
	}
	if reqData.ValidFrom != nil && reqData.ValidUntil != nil && !reqData.ValidUntil.After(*reqData.ValidFrom) {
		errors["valid_until"] = "Valid until must be after valid from!"
	}
}

// Coupon validates both create and update payloads
func Coupon() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CouponRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		errors := validators.Struct(reqData)
		if errors == nil {
			errors = map[string]string{}
		}
		couponRules(reqData, errors)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedCoupon", reqData)
		return c.Next()
	}
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

func Category() fiber.Handler {
	return validators.Body[CategoryRequest]("validatedCategory")
}
