package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func validateBody(t *testing.T, app *fiber.App, target string, schema *jsonschema.Schema) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestAttendanceSnapshotContract(t *testing.T) {
	env := newAdminApp(t, "2024-03-10")
	env.addSession(t, "2024-03-09")
	env.addSession(t, "2024-03-12")
	member := env.enrollMember(t, "Ayu")
	env.enrollMember(t, "Budi")

	status, _ := env.post(t, "/api/admin/attendance", fiber.Map{
		"person_type": "member",
		"person_id":   member.ID,
		"batch_id":    env.batch.ID,
		"date":        "2024-03-09",
		"status":      "absent",
		"notes":       "sick",
	})
	require.Equal(t, fiber.StatusOK, status)

	validateBody(t, env.app, fmt.Sprintf("/api/admin/batches/%d/attendance", env.batch.ID), compileSchema(t, "attendance_snapshot.schema.json"))
}

func TestActivityListContract(t *testing.T) {
	env := newAdminApp(t, "2024-03-10")
	member := env.enrollMember(t, "Ayu")

	status, _ := env.post(t, "/api/admin/excuses/toggle", fiber.Map{
		"person_type": "member",
		"person_id":   member.ID,
		"action":      "resume",
	})
	require.Equal(t, fiber.StatusOK, status)

	validateBody(t, env.app, "/api/admin/activity-logs", compileSchema(t, "activity_list.schema.json"))
}
