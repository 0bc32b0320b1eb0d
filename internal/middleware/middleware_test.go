package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"filehub/internal/auth"
	"filehub/internal/httputil"
	"filehub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"user_id": httputil.GetUserID(r)})
	})
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(auth.NewStaticVerifier())(echoUser())

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "bearer token", method: http.MethodGet, path: "/api/accessible", header: "Bearer alice", wantStatus: http.StatusOK, wantUser: "alice"},
		{name: "scheme is case insensitive", method: http.MethodGet, path: "/api/accessible", header: "bearer bob", wantStatus: http.StatusOK, wantUser: "bob"},
		{name: "missing header", method: http.MethodGet, path: "/api/accessible", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodGet, path: "/api/accessible", header: "Basic YWxpY2U6eA==", wantStatus: http.StatusUnauthorized},
		{name: "empty token", method: http.MethodGet, path: "/api/accessible", header: "Bearer   ", wantStatus: http.StatusUnauthorized},
		{name: "health is public", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "preflight passes", method: http.MethodOptions, path: "/api/folders", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantUser, body["user_id"])
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	var seenID string
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = httputil.GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	t.Run("generates an id", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/folders/9", nil))

		require.NotEmpty(t, seenID)
		assert.Equal(t, seenID, w.Header().Get(requestIDHeader))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "WARN", line["level"])
		assert.Equal(t, float64(http.StatusNotFound), line["status"])
		assert.Equal(t, "/api/folders/9", line["path"])
		assert.Equal(t, seenID, line["request_id"])
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seenID)
		assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	})
}
