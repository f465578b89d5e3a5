// Package validators holds helpers shared by the per-area request validators.
package validators

import (
	"fmt"
	"reflect"
	"strings"

	"brainix/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	return v
}

func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func message(fe validator.FieldError) string {
	name := humanize(fe.Field())
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return name + " is required!"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long!", name, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s item(s)!", name, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters long!", name, fe.Param())
		}
		return fmt.Sprintf("%s must have at most %s item(s)!", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s!", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s!", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s!", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return name + " must be a valid email address!"
	case "url", "http_url":
		return name + " must be a valid URL!"
	case "alphanum":
		return name + " may only contain letters and digits!"
	}
	return name + " is invalid!"
}

// Struct validates v and returns a field -> message map, nil when valid
func Struct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": err.Error()}
	}
	errors := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, exists := errors[fe.Field()]; !exists {
			errors[fe.Field()] = message(fe)
		}
	}
	return errors
}

// Body parses the JSON body into T, validates it and stores it under key
func Body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

// Query parses the query string into T, validates it and stores it under key
func Query[T any](key string, defaults func(*T)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if defaults != nil {
			defaults(reqData)
		}
		if errors := Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

// ParamID checks that the route parameter name is a positive integer and stores it as uint
func ParamID(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt(name)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, fmt.Sprintf("Invalid %s!", strings.ReplaceAll(name, "_", " ")), nil)
		}
		c.Locals(name, uint(id))
		return c.Next()
	}
}

// Pagination is embedded by list queries
type Pagination struct {
	Page  int `query:"page" validate:"gte=1"`
	Limit int `query:"limit" validate:"gte=1,lte=100"`
}

// Offset returns the row offset of the current page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// DefaultPage fills in page 1 and a limit of 20 when absent
func (p *Pagination) DefaultPage() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
}

// PageQuery validates a bare page/limit query
func PageQuery(key string) fiber.Handler {
	return Query[Pagination](key, (*Pagination).DefaultPage)
}
