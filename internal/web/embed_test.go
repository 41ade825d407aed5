package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.POST("/save-record", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	require.NoError(t, RegisterStaticRoutes(e))
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHasEmbeddedFiles(t *testing.T) {
	assert.True(t, HasEmbeddedFiles())
}

func TestRegisterStaticRoutes_Pages(t *testing.T) {
	tests := []struct {
		route string
		title string
	}{
		{"/", "Sign in"},
		{"/dashboard", "Dashboard"},
		{"/billing", "Billing"},
		{"/records", "Records"},
	}

	e := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			rec := serve(e, http.MethodGet, tt.route)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML))
			assert.Contains(t, rec.Body.String(), "<title>"+tt.title)
		})
	}
}

func TestRegisterStaticRoutes_Assets(t *testing.T) {
	e := newTestServer(t)

	rec := serve(e, http.MethodGet, "/js/relay.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/save-to-mega")

	rec = serve(e, http.MethodGet, "/css/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterStaticRoutes_NotFound(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/missing.html"},
		{http.MethodGet, "/js"},
		{http.MethodPost, "/no-such-route"},
		{http.MethodDelete, "/records/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(e, tt.method, tt.target)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}

	// API routes keep priority over the catch-all.
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/save-record").Code)
}

func TestRelayScript_Contract(t *testing.T) {
	e := newTestServer(t)
	script := serve(e, http.MethodGet, "/js/relay.js").Body.String()

	for _, want := range []string{
		"function uploadFile(filename, content, options)",
		"function uploadJSON(data, filename, options)",
		"function uploadImage(base64Data, filename, options)",
		"options.email || stored.email",
		"options.password || stored.password",
		"isBase64: !!options.isBase64",
		"success: false, message:",
	} {
		assert.Contains(t, script, want)
	}
	assert.NotContains(t, script, "function (content, filename)")
}
