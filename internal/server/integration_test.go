package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/userdir/internal/storage/postgres"
)

// TestPostgresIntegration runs the register/login/delete flow against a live
// database configured through DATABASE_URL.
func TestPostgresIntegration(t *testing.T) {
	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "true" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewUserStore(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ts := newTestServer(t, store)

	login := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	resp, _ := call(t, ts.URL, http.MethodPost, "/users/register", map[string]any{
		"login":    login,
		"email":    login + "@example.com",
		"password": password,
		"age":      21,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, out := call(t, ts.URL, http.MethodPost, "/users/login", map[string]string{
		"login":    login,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &token))

	resp, _ = call(t, ts.URL, http.MethodDelete, "/users/delete?login="+login, nil, bearer(token.AccessToken))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Logf("registered, logged in and deleted %s", login)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
