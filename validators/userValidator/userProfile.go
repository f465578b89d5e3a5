package userValidator

import (
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
)

// ProfileRequest updates the user row and the caller's role profile
type ProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Headline  *string `json:"headline" validate:"omitempty,max=200"`
	Bio       *string `json:"bio" validate:"omitempty,max=5000"`
	Interests *string `json:"interests" validate:"omitempty,max=500"`
	Website   *string `json:"website" validate:"omitempty,url"`
	Expertise *string `json:"expertise" validate:"omitempty,max=500"`
}

func UpdateProfile() fiber.Handler {
	return validators.Body[ProfileRequest]("validatedProfile")
}

// BecomeInstructorRequest seeds the new instructor profile
type BecomeInstructorRequest struct {
	Headline  string `json:"headline" validate:"max=200"`
	Bio       string `json:"bio" validate:"max=5000"`
	Website   string `json:"website" validate:"omitempty,url"`
	Expertise string `json:"expertise" validate:"max=500"`
}

func BecomeInstructor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			c.Locals("validatedInstructor", &BecomeInstructorRequest{})
			return c.Next()
		}
		return validators.Body[BecomeInstructorRequest]("validatedInstructor")(c)
	}
}
