package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/routes"
	"todo-api/testutil"
)

func TestRequestID(t *testing.T) {
	_, router, _ := testutil.SetupTestDB(t)

	t.Run("generated when absent", func(t *testing.T) {
		resp := testutil.DoRequest(t, router, http.MethodGet, "/api/todos", "")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Len(t, resp.Header().Get(routes.RequestIDHeader), 36)
	})

	t.Run("propagated from client", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req.Header.Set(routes.RequestIDHeader, "abc-123")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, "abc-123", resp.Header().Get(routes.RequestIDHeader))
	})
}

func TestCORS(t *testing.T) {
	_, router, _ := testutil.SetupTestDB(t)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/todos/1/complete", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, preflight)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Contains(t, resp.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	db, _, _ := testutil.SetupTestDB(t)
	cfg := testutil.TestServerConfig()
	cfg.CORSOrigins = []string{"http://allowed.example"}
	router := routes.SetupRouter(db, "sqlite", cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Origin", "http://allowed.example")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, "http://allowed.example", resp.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestHealth(t *testing.T) {
	db, router, _ := testutil.SetupTestDB(t)

	resp := testutil.DoRequest(t, router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var body gin.H
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	require.NoError(t, db.Close())
	resp = testutil.DoRequest(t, router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestOpenAPIDocument(t *testing.T) {
	_, router, _ := testutil.SetupTestDB(t)

	resp := testutil.DoRequest(t, router, http.MethodGet, "/api/docs/openapi.yaml", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/yaml", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), "openapi:")
	assert.Contains(t, resp.Body.String(), "/api/todos/bulk")
}

func TestNoRoute(t *testing.T) {
	_, router, _ := testutil.SetupTestDB(t)

	resp := testutil.DoRequest(t, router, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, resp.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	_, router, _ := testutil.SetupTestDB(t)

	tests := []struct {
		method, path string
	}{
		{http.MethodDelete, "/api/todos"},
		{http.MethodPost, "/api/todos/1"},
		{http.MethodGet, "/api/todos/1/complete"},
	}
	for _, tt := range tests {
		resp := testutil.DoRequest(t, router, tt.method, tt.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Code, "%s %s", tt.method, tt.path)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, resp.Body.String())
	}
}
