package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func TestResponseEnvelopes(t *testing.T) {
	cases := []struct {
		name    string
		handler fiber.Handler
		status  int
		success bool
		message string
		data    string
		meta    string
		details string
	}{
		{
			name: "list with pagination meta",
			handler: func(c *fiber.Ctx) error {
				return utils.OK(c, []string{"Maya"}, "", map[string]int{"total": 1})
			},
			status: fiber.StatusOK, success: true, message: "success",
			data: `["Maya"]`, meta: `{"total":1}`,
		},
		{
			name: "created",
			handler: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "member created", map[string]uint{"id": 4})
			},
			status: fiber.StatusCreated, success: true, message: "member created",
			data: `{"id":4}`,
		},
		{
			name: "zero status falls back to ok",
			handler: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, 0, "", nil)
			},
			status: fiber.StatusOK, success: true, message: "success",
		},
		{
			name: "plain error",
			handler: func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusNotFound, "batch not found")
			},
			status: fiber.StatusNotFound, message: "batch not found",
		},
		{
			name: "validation details",
			handler: func(c *fiber.Ctx) error {
				return utils.SendValidationError(c, []map[string]string{{"field": "end_date", "message": "is required to pause"}})
			},
			status: fiber.StatusUnprocessableEntity, message: "validation failed",
			details: `[{"field":"end_date","message":"is required to pause"}]`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", tc.handler)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tc.status, resp.StatusCode)

			var body envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, tc.success, body.Success)
			require.Equal(t, tc.message, body.Message)
			assertRaw(t, tc.data, body.Data)
			assertRaw(t, tc.meta, body.Meta)
			assertRaw(t, tc.details, body.Details)
		})
	}
}

func assertRaw(t *testing.T, want string, got json.RawMessage) {
	t.Helper()
	if want == "" {
		require.Empty(t, got)
		return
	}
	require.JSONEq(t, want, string(got))
}
