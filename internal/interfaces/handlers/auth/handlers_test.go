package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	authsvc "edutoken-backend/internal/auth"
	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/middleware"
	"edutoken-backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrincipalFinder for tests: returns configured principal or error.
type fakePrincipalFinder struct {
	principal *domain.Principal
	err       error
}

func (f *fakePrincipalFinder) FindByPrincipalAndPassword(principal, password string) (*domain.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.principal != nil && f.principal.Principal == principal && password == "password123!" {
		return f.principal, nil
	}
	if f.principal != nil && f.principal.Principal == principal {
		return nil, authsvc.ErrIncorrectPassword
	}
	return nil, authsvc.ErrInvalidPrincipal
}

func setupAuthHandlers(t *testing.T, finder authsvc.PrincipalFinder) (*Handlers, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		Finder: finder,
		Rdb:    rdb,
		Config: middleware.SessionConfig{},
	}
	return h, rdb
}

func postJSON(app *fiber.App, path string, body interface{}) (*httpResponse, error) {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		return nil, err
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	_ = json.Unmarshal(raw, &out)
	return &httpResponse{Status: resp.StatusCode, Body: out, Cookies: resp.Header.Values("Set-Cookie")}, nil
}

type httpResponse struct {
	Status  int
	Body    map[string]interface{}
	Cookies []string
}

var student = &domain.Principal{Principal: "student.one", DisplayName: "Student One"}

func TestLogin_EmptyBody(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakePrincipalFinder{principal: student})
	app := fiber.New()
	app.Post("/login", h.Login)

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_MissingCredentials(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakePrincipalFinder{})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(app, "/login", map[string]string{"principal": "student.one"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}

func TestLogin_UnknownPrincipal(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakePrincipalFinder{})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(app, "/login", map[string]string{"principal": "nobody.here", "password": "any"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
}

func TestLogin_IncorrectPassword(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakePrincipalFinder{principal: student})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(app, "/login", map[string]string{"principal": "student.one", "password": "wrong"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
}

func TestLogin_Success(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakePrincipalFinder{principal: student})
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(app, "/login", map[string]string{"principal": "student.one", "password": "password123!"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, "success", resp.Body["status"])
	assert.Equal(t, "Login successful", resp.Body["message"])
	data, _ := resp.Body["data"].(map[string]interface{})
	require.NotNil(t, data)
	p, _ := data["principal"].(map[string]interface{})
	require.NotNil(t, p)
	assert.Equal(t, "student.one", p["principal"])
	assert.Equal(t, "Student One", p["display_name"])

	require.NotEmpty(t, resp.Cookies)
	assert.Contains(t, resp.Cookies[0], "edutoken.sid=")

	members, err := rdb.SMembers(context.Background(), "principal_sessions:student.one").Result()
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestLogin_NilFinder(t *testing.T) {
	h, _ := setupAuthHandlers(t, nil)
	app := fiber.New()
	app.Post("/login", h.Login)

	resp, err := postJSON(app, "/login", map[string]string{"principal": "student.one", "password": "pass"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.Status)
}

func TestRegister(t *testing.T) {
	h, _ := setupAuthHandlers(t, nil)
	h.DB = testutil.OpenDB(t)
	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)

	resp, err := postJSON(app, "/register", map[string]string{"principal": "investor.alpha", "password": "s3cret!pass", "display_name": "Alpha"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.Status)

	resp, err = postJSON(app, "/register", map[string]string{"principal": "investor.alpha", "password": "s3cret!pass"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.Status)

	resp, err = postJSON(app, "/register", map[string]string{"principal": "investor.beta", "password": "weak"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Equal(t, authsvc.ErrWeakPassword.Error(), resp.Body["error"].(map[string]interface{})["message"])

	// the registered principal can log in through the GORM finder
	h.Finder = &authsvc.GormPrincipalFinder{DB: h.DB}
	resp, err = postJSON(app, "/login", map[string]string{"principal": "investor.alpha", "password": "s3cret!pass"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.Status)
}

func TestMe_NoSession(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakePrincipalFinder{})
	app := fiber.New()
	app.Get("/me", h.Me)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_WithSessionPrincipalInLocals(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakePrincipalFinder{})
	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"principal":    "student.one",
			"display_name": "Student One",
		})
		return h.Me(c)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "Authenticated", out["message"])
	data, _ := out["data"].(map[string]interface{})
	p, _ := data["principal"].(map[string]interface{})
	assert.Equal(t, "student.one", p["principal"])
}

func TestLogout_ClearsSession(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakePrincipalFinder{})
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, middleware.SessionRedisPrefix+"sid-1", `{"user":{"principal":"student.one"}}`, 0).Err())
	require.NoError(t, rdb.SAdd(ctx, principalSessionsPrefix+"student.one", "sid-1").Err())

	app := fiber.New()
	app.Delete("/logout", func(c *fiber.Ctx) error {
		c.Locals("session_id", "sid-1")
		c.Locals("user", map[string]interface{}{"principal": "student.one"})
		return h.Logout(c)
	})

	resp, err := app.Test(httptest.NewRequest("DELETE", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Values("Set-Cookie"))

	n, _ := rdb.Exists(ctx, middleware.SessionRedisPrefix+"sid-1").Result()
	assert.Equal(t, int64(0), n)
	members, _ := rdb.SMembers(ctx, principalSessionsPrefix+"student.one").Result()
	assert.Empty(t, members)
}

func TestLogout_NoSession(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakePrincipalFinder{})
	app := fiber.New()
	app.Delete("/logout", h.Logout)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Values("Set-Cookie"))
}
