package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-catalog/internal/kafka"
	"ms-catalog/internal/logger"
	"ms-catalog/internal/models"
	"ms-catalog/internal/tours"
	"ms-catalog/internal/tours/api"
	"ms-catalog/internal/tours/db"
)

func setupRouter(t *testing.T) (*chi.Mux, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	for _, model := range []interface{}{
		(*models.Tour)(nil), (*models.TourDay)(nil), (*models.Activity)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	service := tours.NewTourService(&db.DB{Bun: bunDB}, kafka.NewMockProducer())
	handler := api.NewHandler(service, logger.NewLogger())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, bunDB
}

func insertTour(t *testing.T, bunDB *bun.DB, id string) {
	now := time.Now()
	tour := models.Tour{
		ID:               id,
		Title:            "Altai Highlights",
		Description:      "A week across the Altai mountains.",
		Region:           "Altai",
		DurationDays:     7,
		Price:            55000,
		DiscountPercent:  29,
		MaxParticipants:  12,
		DifficultyLevel:  models.DifficultyMedium,
		IncludedServices: []string{},
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	_, err := bunDB.NewInsert().Model(&tour).Exec(context.Background())
	require.NoError(t, err)
}

func TestCreateTour_InvalidPayloadAnswers400(t *testing.T) {
	router, _ := setupRouter(t)

	body := `{"title":"","description":"short","region":"Altai","duration_days":7,"price":100,"max_participants":5,"difficulty_level":"medium"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tours/", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndFetchTour(t *testing.T) {
	router, _ := setupRouter(t)

	body := `{
		"title": "Altai Highlights",
		"description": "A week across the Altai mountains.",
		"region": "Altai",
		"duration_days": 7,
		"price": 55000,
		"discount_percent": 29,
		"max_participants": 12,
		"difficulty_level": "medium",
		"days": [
			{"day_number": 1, "activities": [
				{"name": "Transfer", "description": "Airport pickup.", "type": "transfer", "order_number": 1}
			]}
		]
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tours/", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotEmpty(t, created["id"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tours/"+created["id"]+"/details", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var details models.TourDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&details))
	assert.Equal(t, "Altai Highlights", details.Title)
	assert.Equal(t, 77465.0, details.OriginalPrice)
	require.Len(t, details.Days, 1)
	require.Len(t, details.Days[0].Activities, 1)
}

func TestPatchTour_DeletedTourStillAnswers200(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/tours/deleted-tour", strings.NewReader(`{"title":"Late autosave"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "deleted-tour", resp["id"])
}

func TestPatchTour_InvalidDiscountAnswers400(t *testing.T) {
	router, bunDB := setupRouter(t)
	insertTour(t, bunDB, "tour-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/tours/tour-1", strings.NewReader(`{"discount_percent":150}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttachMainImage_UnsavedTourAnswersConflict(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tours/unsaved/image", strings.NewReader(`{"storage_id":"storage-ref"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAttachMainImage_PersistedTour(t *testing.T) {
	router, bunDB := setupRouter(t)
	insertTour(t, bunDB, "tour-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tours/tour-1/image", strings.NewReader(`{"storage_id":"storage-ref"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tour models.Tour
	err := bunDB.NewSelect().Model(&tour).Where("id = ?", "tour-1").Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "storage-ref", tour.MainImage)
}

func TestDeleteTour(t *testing.T) {
	router, bunDB := setupRouter(t)
	insertTour(t, bunDB, "tour-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/tours/tour-1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tours/tour-1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
