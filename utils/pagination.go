package utils

import "github.com/gofiber/fiber/v2"

// Paginated wraps a page of items the way every list endpoint returns them
func Paginated(key string, items interface{}, total int64, page, limit int) fiber.Map {
	return fiber.Map{
		key: items,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}
}
