package validators

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string `json:"title" validate:"required,min=3"`
	Level string `json:"level" validate:"omitempty,oneof=LOW HIGH"`
	Count int    `json:"item_count" validate:"gte=1"`
}

func TestStructMessages(t *testing.T) {
	errs := Struct(&sample{Title: "ab", Level: "MID"})
	assert.Equal(t, "Title must be at least 3 characters long!", errs["title"])
	assert.Equal(t, "Level must be one of: LOW, HIGH!", errs["level"])
	assert.Equal(t, "Item count must be greater than or equal to 1!", errs["item_count"])

	assert.Nil(t, Struct(&sample{Title: "abc", Count: 1}))
	assert.Equal(t, "Title is required!", Struct(&sample{Count: 1})["title"])
}

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers = append(handlers, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Post("/items/:id", handlers...)
	app.Get("/items", handlers...)
	return app
}

func TestBody(t *testing.T) {
	app := newApp(Body[sample]("req"))

	req := httptest.NewRequest("POST", "/items/1", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"title":"Title must be at least 3 characters long!"`)

	req = httptest.NewRequest("POST", "/items/1", strings.NewReader(`{"title":"valid","item_count":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest("POST", "/items/1", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestParamID(t *testing.T) {
	app := newApp(ParamID("id"))

	resp, err := app.Test(httptest.NewRequest("POST", "/items/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/items/0", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/items/5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestPageQuery(t *testing.T) {
	var got *Pagination
	app := fiber.New()
	app.Get("/items", PageQuery("page"), func(c *fiber.Ctx) error {
		got = c.Locals("page").(*Pagination)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 20, got.Limit)
	assert.Equal(t, 0, got.Offset())

	resp, err = app.Test(httptest.NewRequest("GET", "/items?page=3&limit=10", nil))
	require.NoError(t, err)
	assert.Equal(t, 20, got.Offset())
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/items?limit=500", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
