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
	"ms-catalog/internal/spaces"
	"ms-catalog/internal/spaces/api"
	"ms-catalog/internal/spaces/db"
)

func setupRouter(t *testing.T) (*chi.Mux, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	for _, model := range []interface{}{
		(*models.SpaceType)(nil), (*models.Space)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	service := spaces.NewSpaceService(&db.DB{Bun: bunDB}, kafka.NewMockProducer())
	handler := api.NewHandler(service, logger.NewLogger())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, bunDB
}

func insertSpaceType(t *testing.T, bunDB *bun.DB, id string, orderIndex int) {
	now := time.Now()
	spaceType := models.SpaceType{
		ID:         id,
		TypeID:     orderIndex,
		Name:       "Standard",
		Slug:       "standard-" + id,
		OrderIndex: orderIndex,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := bunDB.NewInsert().Model(&spaceType).Exec(context.Background())
	require.NoError(t, err)
}

func TestDeleteSpaceType_InUseAnswersConflict(t *testing.T) {
	router, bunDB := setupRouter(t)
	insertSpaceType(t, bunDB, "st-1", 1)

	now := time.Now()
	space := models.Space{
		ID:          "space-1",
		Name:        "Room 101",
		Description: "Cozy standard room.",
		Capacity:    2,
		AreaSqm:     24.5,
		Amenities:   []string{},
		RoomType:    "standard",
		RoomTypeID:  "st-1",
		Images:      []string{},
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := bunDB.NewInsert().Model(&space).Exec(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/space-types/st-1", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The category survives the rejected delete.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/space-types/st-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Remove the referencing space, then the delete succeeds.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/spaces/space-1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/space-types/st-1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateSpaceType_AppendsToOrdering(t *testing.T) {
	router, bunDB := setupRouter(t)
	insertSpaceType(t, bunDB, "st-1", 1)
	insertSpaceType(t, bunDB, "st-2", 2)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/space-types/", strings.NewReader(`{"name":"Suite","slug":"suite"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.SpaceType
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, 3, created.OrderIndex)
	assert.Equal(t, "Suite", created.DisplayName, "display name falls back to name")
}

func TestReorderSpaceTypes_EmptyBatchRejected(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/space-types/order", strings.NewReader(`{"updates":[]}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReorderSpaceTypes_PersistsNewOrdering(t *testing.T) {
	router, bunDB := setupRouter(t)
	insertSpaceType(t, bunDB, "st-1", 1)
	insertSpaceType(t, bunDB, "st-2", 2)
	insertSpaceType(t, bunDB, "st-3", 3)

	body := `{"updates":[{"id":"st-3","order_index":1},{"id":"st-1","order_index":2},{"id":"st-2","order_index":3}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/space-types/order", strings.NewReader(body)))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/space-types/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var types []models.SpaceType
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&types))
	require.Len(t, types, 3)
	assert.Equal(t, "st-3", types[0].ID)
	assert.Equal(t, "st-1", types[1].ID)
	assert.Equal(t, "st-2", types[2].ID)
}
