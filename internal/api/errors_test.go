package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		showDetails bool
		wantStatus  int
		wantBody    []string
	}{
		{
			name:       "api error",
			err:        NewValidationError("missing filename"),
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{`"success":false`, `"code":"VALIDATION_ERROR"`, `"error":"missing filename"`},
		},
		{
			name:       "echo not found",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   []string{`"error":"Not Found"`, `"path":"/nowhere"`, `"details":"The requested resource does not exist"`},
		},
		{
			name:       "echo http error",
			err:        echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"),
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   []string{`"code":"HTTP_ERROR"`},
		},
		{
			name:       "unexpected error hides details",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   []string{`"error":"Internal Server Error"`, `"details":"An error occurred"`},
		},
		{
			name:        "unexpected error in development",
			err:         errors.New("disk on fire"),
			showDetails: true,
			wantStatus:  http.StatusInternalServerError,
			wantBody:    []string{`"details":"disk on fire"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewErrorHandler(nil, tt.showDetails)(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, nil, false)
	deps := &Dependencies{Version: "1.2.3"}
	RegisterRoutes(e, NewHandlers(deps), deps)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)
	assert.Contains(t, rec.Body.String(), `"uptime":`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"path":"/api/unknown"`)
}
