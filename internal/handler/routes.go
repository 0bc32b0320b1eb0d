package handler

import "net/http"

// Handlers bundles every HTTP handler the API serves
type Handlers struct {
	Folders *FolderHandler
	Files   *FileHandler
	Shares  *ShareHandler
	Access  *AccessHandler
}

// Register mounts all routes on mux (Go 1.22+ enhanced patterns)
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Folder routes
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/children", h.Folders.ListChildren)
	mux.HandleFunc("GET /api/root/children", h.Folders.ListRootChildren)

	// File routes
	mux.HandleFunc("POST /api/files", h.Files.UploadFile)
	mux.HandleFunc("GET /api/files/{id}", h.Files.GetFile)
	mux.HandleFunc("GET /api/files/{id}/content", h.Files.DownloadFile)
	mux.HandleFunc("PATCH /api/files/{id}", h.Files.UpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", h.Files.DeleteFile)

	// Share routes
	mux.HandleFunc("POST /api/shares", h.Shares.Share)
	mux.HandleFunc("GET /api/shares/received", h.Shares.ListReceived)
	mux.HandleFunc("GET /api/shares/{type}/{id}", h.Shares.ListGrants)
	mux.HandleFunc("DELETE /api/shares/{type}/{id}/{user}", h.Shares.Revoke)

	// Access routes
	mux.HandleFunc("GET /api/accessible", h.Access.ListAccessible)
	mux.HandleFunc("GET /api/access/{type}/{id}", h.Access.CheckAccess)
}
