package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-catalog/internal/logger"
	"ms-catalog/internal/storage"
	"ms-catalog/internal/storage/api"
)

func setupHandler(t *testing.T) (*chi.Mux, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	files, err := storage.NewFileStore(t.TempDir(), "http://localhost:8085/api/storage/files")
	require.NoError(t, err)
	tokens := storage.NewTokenStore(client, 10*time.Minute)

	handler := api.NewHandler(tokens, files, "http://localhost:8085/api/storage/upload", logger.NewLogger())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, mr
}

func TestUploadPipeline(t *testing.T) {
	router, _ := setupHandler(t)

	// 1. Request a one-time upload destination.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload-url", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var issued struct {
		Token     string `json:"token"`
		UploadURL string `json:"upload_url"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&issued))
	assert.NotEmpty(t, issued.Token)
	assert.Contains(t, issued.UploadURL, issued.Token)

	// 2. Upload a binary against the token.
	req := httptest.NewRequest(http.MethodPost, "/upload/"+issued.Token, strings.NewReader("jpeg bytes"))
	req.Header.Set("Content-Type", "image/jpeg")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var uploaded struct {
		StorageID string `json:"storage_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&uploaded))
	assert.NotEmpty(t, uploaded.StorageID)

	// 3. The blob is served back with its recorded content type.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/"+uploaded.StorageID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "jpeg bytes", string(body))
}

func TestUpload_TokenIsSingleUse(t *testing.T) {
	router, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload-url", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var issued struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&issued))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload/"+issued.Token, strings.NewReader("first")))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload/"+issued.Token, strings.NewReader("second")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpload_ExpiredTokenRejected(t *testing.T) {
	router, mr := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload-url", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var issued struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&issued))

	mr.FastForward(11 * time.Minute)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload/"+issued.Token, strings.NewReader("late")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServeFile_MissingBlob(t *testing.T) {
	router, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/never-stored", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFile(t *testing.T) {
	router, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload-url", nil))
	var issued struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&issued))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload/"+issued.Token, strings.NewReader("bytes")))
	var uploaded struct {
		StorageID string `json:"storage_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&uploaded))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/files/"+uploaded.StorageID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/"+uploaded.StorageID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
