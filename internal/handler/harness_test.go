package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"filehub/internal/auth"
	"filehub/internal/logger"
	"filehub/internal/middleware"
	"filehub/internal/repository/memory"
	authSvc "filehub/internal/service/auth"
	"filehub/internal/service/catalog"
	"filehub/internal/service/sharing"
	"filehub/internal/storage"

	"github.com/stretchr/testify/require"
)

// apiHarness serves the full route table over in-memory stores.
// The static verifier makes the bearer token the user id.
type apiHarness struct {
	t       *testing.T
	handler http.Handler
	blobs   *storage.MemoryStore
}

func newAPIHarness(t *testing.T, maxUploadBytes int64) *apiHarness {
	t.Helper()

	store := memory.NewStore()
	tm := memory.NewTransactionManager(store)
	folders := memory.NewFolderRepository(store)
	files := memory.NewFileRepository(store)
	shares := memory.NewShareRepository(store)
	entries := memory.NewEntryRepository(store)
	blobs := storage.NewMemoryStore()

	log := logger.Nop()
	ledger := sharing.NewLedger(shares, folders, files, tm, log)
	access := sharing.NewAccessService(folders, files, shares, ledger, tm, false, log)
	authorizer := authSvc.NewOwnerBasedAuthorizer(folders, files)
	catalogService := catalog.NewCatalogService(folders, files, entries, ledger, access, blobs, tm, authorizer, log)

	handlers := &Handlers{
		Folders: NewFolderHandler(catalogService, log),
		Files:   NewFileHandler(catalogService, maxUploadBytes, log),
		Shares:  NewShareHandler(ledger, log),
		Access:  NewAccessHandler(access, log),
	}
	mux := http.NewServeMux()
	handlers.Register(mux)

	return &apiHarness{
		t:       t,
		handler: middleware.AuthMiddleware(auth.NewStaticVerifier())(mux),
		blobs:   blobs,
	}
}

func (h *apiHarness) do(user, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func (h *apiHarness) json(user, method, path string, payload any) *httptest.ResponseRecorder {
	h.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(h.t, err)
		body = bytes.NewReader(raw)
	}
	return h.do(user, method, path, body, "application/json")
}

func (h *apiHarness) upload(user string, fields map[string]string, filename, content string) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(h.t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(h.t, err)
		_, err = io.WriteString(part, content)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, mw.Close())
	return h.do(user, http.MethodPost, "/api/files", &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
