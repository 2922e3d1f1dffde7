package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	cases := []struct {
		name       string
		ping       error
		wantStatus int
		wantState  string
	}{
		{name: "ok", wantStatus: http.StatusOK, wantState: "ok"},
		{name: "storage down", ping: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantState: "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(time.Now().Add(-time.Minute), pingerFunc(func(context.Context) error { return tc.ping }))
			mux := http.NewServeMux()
			Mount(mux, nil, h.Routes()...)

			rec, env := do(t, mux, http.MethodGet, "/health", nil, "")
			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, string(env.Data), `"status":"`+tc.wantState+`"`)
		})
	}
}

func TestMount_GuardsOnlyProtectedRoutes(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) })
	}

	mux := http.NewServeMux()
	Mount(mux, deny,
		Route{Method: http.MethodGet, Path: "/open", Handler: ok},
		Route{Method: http.MethodGet, Path: "/closed", Handler: ok, RequiresAuth: true},
	)

	for path, want := range map[string]int{"/open": http.StatusOK, "/closed": http.StatusUnauthorized} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/open", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRoutePattern(t *testing.T) {
	assert.Equal(t, "GET /users/all", Route{Method: http.MethodGet, Path: "/users/all"}.Pattern())
}
