package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ms-catalog/internal/logger"
	"ms-catalog/internal/storage"
	"ms-catalog/internal/utils"
)

type Handler struct {
	Tokens *storage.TokenStore
	Files  *storage.FileStore
	Logger *logger.Logger

	// UploadBaseURL prefixes the destination handed out by CreateUploadURL.
	UploadBaseURL string
}

func NewHandler(tokens *storage.TokenStore, files *storage.FileStore, uploadBaseURL string, log *logger.Logger) *Handler {
	return &Handler{
		Tokens:        tokens,
		Files:         files,
		Logger:        log,
		UploadBaseURL: strings.TrimSuffix(uploadBaseURL, "/"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload-url", h.CreateUploadURL)
	r.Post("/upload/{token}", h.Upload)
	r.Get("/files/{storageId}", h.ServeFile)
	r.Delete("/files/{storageId}", h.DeleteFile)
}

// CreateUploadURL issues a short-lived one-time destination for a single
// binary upload.
func (h *Handler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	token, err := h.Tokens.Issue()
	if err != nil {
		h.Logger.Error("STORAGE", fmt.Sprintf("CreateUploadURL: failed to issue token: %v", err))
		http.Error(w, "Failed to create upload URL: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":      token,
		"upload_url": h.UploadBaseURL + "/" + token,
	})
}

// Upload consumes the token and stores the request body as a new blob. An
// expired or reused token fails the whole attempt; nothing is stored.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	valid, err := h.Tokens.Consume(token)
	if err != nil {
		h.Logger.Error("STORAGE", fmt.Sprintf("Upload: token check failed: %v", err))
		http.Error(w, "Failed to verify upload token: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !valid {
		h.Logger.Warn("STORAGE", fmt.Sprintf("Upload: token %s expired or already used", token))
		http.Error(w, "Upload URL expired or already used", http.StatusForbidden)
		return
	}

	storageID := utils.NewID()
	size, err := h.Files.Save(storageID, r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		h.Logger.Error("STORAGE", fmt.Sprintf("Upload: failed to store blob: %v", err))
		http.Error(w, "Failed to store file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Logger.LogStorage("upload", storageID, fmt.Sprintf("stored %d bytes", size))

	writeJSON(w, http.StatusOK, map[string]string{"storage_id": storageID})
}

func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	storageID := chi.URLParam(r, "storageId")

	file, contentType, err := h.Files.Open(storageID)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidID) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("STORAGE", fmt.Sprintf("ServeFile: failed to open %s: %v", storageID, err))
		http.Error(w, "Failed to read file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, file)
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	storageID := chi.URLParam(r, "storageId")

	if err := h.Files.Delete(storageID); err != nil {
		if errors.Is(err, storage.ErrInvalidID) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("STORAGE", fmt.Sprintf("DeleteFile: failed to delete %s: %v", storageID, err))
		http.Error(w, "Failed to delete file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
