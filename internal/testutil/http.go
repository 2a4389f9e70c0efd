package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// PrincipalHeader lets tests pick the session principal per request.
const PrincipalHeader = "X-Test-Principal"

// FakeSession puts the PrincipalHeader value into Locals the way the session middleware does.
func FakeSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p := c.Get(PrincipalHeader); p != "" {
			c.Locals("user", map[string]interface{}{"principal": p})
		}
		return c.Next()
	}
}

// Do sends a request as principal (empty for anonymous) and decodes the JSON envelope.
func Do(t *testing.T, app *fiber.App, method, path, principal string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set(PrincipalHeader, principal)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// Data returns the "data" object of a success envelope.
func Data(t *testing.T, out map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := out["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", out["data"])
	return d
}

// ErrorCode returns error.details.code of an error envelope ("" when absent).
func ErrorCode(out map[string]interface{}) string {
	e, _ := out["error"].(map[string]interface{})
	d, _ := e["details"].(map[string]interface{})
	code, _ := d["code"].(string)
	return code
}
