// Package apperrors carries the HTTP status a failure should surface with.
package apperrors

import (
	"errors"
	"net/http"
)

// Error is a failure that maps onto one HTTP status
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error { return New(http.StatusConflict, message) }

// Status returns the HTTP status for err, 500 when it is not an *Error
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

var (
	ErrUserNotFound       = NotFound("User not found!")
	ErrCourseNotFound     = NotFound("Course not found!")
	ErrModuleNotFound     = NotFound("Module not found!")
	ErrLessonNotFound     = NotFound("Lesson not found!")
	ErrOrderNotFound      = NotFound("Order not found!")
	ErrCouponNotFound     = NotFound("Coupon not found!")
	ErrBlogNotFound       = NotFound("Blog post not found!")
	ErrCommentNotFound    = NotFound("Comment not found!")
	ErrNotCourseOwner     = Forbidden("You are not the instructor of this course!")
	ErrNotEnrolled        = Forbidden("You are not enrolled in this course!")
	ErrAlreadyEnrolled    = Conflict("You are already enrolled in this course!")
	ErrAlreadyInCart      = Conflict("Course is already in your cart!")
	ErrCartEmpty          = BadRequest("Your cart is empty!")
	ErrCourseNotPublished = BadRequest("Course is not available for purchase!")
	ErrOwnCourse          = BadRequest("You cannot purchase your own course!")
	ErrCouponInvalid      = BadRequest("Coupon is invalid or expired!")
	ErrCouponUsed         = BadRequest("You have already used this coupon!")
	ErrCouponMinimum      = BadRequest("Order does not meet the coupon minimum amount!")
	ErrCouponNotEligible  = BadRequest("Coupon does not apply to any course in your cart!")
)
