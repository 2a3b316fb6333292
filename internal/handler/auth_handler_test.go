package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-sync/internal/config"
	"go-pos-sync/internal/middleware"
	"go-pos-sync/internal/model"
	"go-pos-sync/internal/service"
	"go-pos-sync/internal/store"
	"go-pos-sync/pkg/database"
)

func newTestLocal(t *testing.T) *store.Local {
	t.Helper()
	cfg := config.Local{Path: filepath.Join(t.TempDir(), "pos.db"), BusyTimeout: 5000}
	db, err := database.OpenLocal(cfg.DSN())
	require.NoError(t, err)
	local, err := store.NewLocal(db)
	require.NoError(t, err)
	return local
}

func newAuthApp(t *testing.T) (*fiber.App, *store.Local) {
	t.Helper()
	local := newTestLocal(t)
	terminals := service.NewTerminalService(local, time.Hour)

	app := fiber.New()
	app.Post("/api/v1/auth/login", NewAuthHandler(terminals).Login)
	app.Get("/api/v1/probe", middleware.RequireTerminal(terminals), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"terminal": c.Locals("terminal_name")})
	})
	return app, local
}

func registerTerminal(t *testing.T, local *store.Local, name, key string) *model.Terminal {
	t.Helper()
	terminal, err := service.RegisterTerminal(local, name, key)
	require.NoError(t, err)
	return terminal
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var parsed map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return res.StatusCode, parsed
}

func TestLoginIssuesUsableToken(t *testing.T) {
	app, local := newAuthApp(t)
	registerTerminal(t, local, "register-1", "super-secret-key")

	status, body := postJSON(t, app, "/api/v1/auth/login", `{"name":"register-1","access_key":"super-secret-key"}`)
	require.Equal(t, 200, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/api/v1/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, 200, res.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, local := newAuthApp(t)
	registerTerminal(t, local, "register-1", "super-secret-key")

	status, _ := postJSON(t, app, "/api/v1/auth/login", `{"name":"register-1","access_key":"wrong"}`)
	assert.Equal(t, 401, status)

	status, _ = postJSON(t, app, "/api/v1/auth/login", `{"name":"no-such-terminal","access_key":"super-secret-key"}`)
	assert.Equal(t, 401, status)
}

func TestLoginRejectsDeactivatedTerminal(t *testing.T) {
	app, local := newAuthApp(t)
	terminal := registerTerminal(t, local, "register-1", "super-secret-key")

	err := local.DB().Model(&model.Terminal{}).Where("id = ?", terminal.ID).Update("is_active", false).Error
	require.NoError(t, err)

	status, body := postJSON(t, app, "/api/v1/auth/login", `{"name":"register-1","access_key":"super-secret-key"}`)
	assert.Equal(t, 401, status)
	assert.Contains(t, body["error"], "deactivated")
}

func TestLoginValidatesPayload(t *testing.T) {
	app, _ := newAuthApp(t)

	status, _ := postJSON(t, app, "/api/v1/auth/login", `{"name":"register-1"}`)
	assert.Equal(t, 400, status)

	status, _ = postJSON(t, app, "/api/v1/auth/login", `{bad json`)
	assert.Equal(t, 400, status)
}

func TestProtectedRouteRequiresBearerToken(t *testing.T) {
	app, _ := newAuthApp(t)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc123",
		"garbage token":  "Bearer not-a-jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/probe", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			res, err := app.Test(req, -1)
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, 401, res.StatusCode)
		})
	}
}
