package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-catalog/internal/logger"
	"ms-catalog/internal/models"
	"ms-catalog/internal/tours"
	"ms-catalog/internal/tours/db"
)

type Handler struct {
	TourService *tours.TourService
	Logger      *logger.Logger
}

func NewHandler(tourService *tours.TourService, log *logger.Logger) *Handler {
	return &Handler{
		TourService: tourService,
		Logger:      log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tours", func(r chi.Router) {
		r.Get("/", h.ListTours)
		r.Get("/regions", h.ListRegions)
		r.Post("/", h.CreateTour)
		r.Get("/{tourId}", h.GetTour)
		r.Get("/{tourId}/details", h.GetTourDetails)
		r.Put("/{tourId}", h.UpdateTour)
		r.Patch("/{tourId}", h.PatchTour)
		r.Delete("/{tourId}", h.DeleteTour)
		r.Post("/{tourId}/image", h.AttachMainImage)
		r.Post("/activities/{activityId}/image", h.AttachActivityImage)
		r.Delete("/activities/{activityId}/image", h.ClearActivityImage)
	})
}

func (h *Handler) ListTours(w http.ResponseWriter, r *http.Request) {
	filter := models.TourFilter{
		OnlyActive: r.URL.Query().Get("only_active") == "true",
		Region:     r.URL.Query().Get("region"),
	}
	h.Logger.Info("API", fmt.Sprintf("ListTours: only_active=%v region=%q", filter.OnlyActive, filter.Region))

	toursList, err := h.TourService.ListTours(filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTours: failed: %v", err))
		http.Error(w, "Failed to list tours: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toursList)
}

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.TourService.ListRegions()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListRegions: failed: %v", err))
		http.Error(w, "Failed to list regions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, regions)
}

func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourId")
	h.Logger.Info("API", fmt.Sprintf("GetTour: tourId=%s", tourID))

	tour, err := h.TourService.GetTour(tourID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTour: tour not found: %v", err))
		http.Error(w, "Tour not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, tour)
}

func (h *Handler) GetTourDetails(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourId")
	h.Logger.Info("API", fmt.Sprintf("GetTourDetails: tourId=%s", tourID))

	details, err := h.TourService.GetTourDetails(tourID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTourDetails: tour not found: %v", err))
		http.Error(w, "Tour not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var input models.TourInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTour: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.TourService.CreateTour(input)
	if err != nil {
		if errors.Is(err, tours.ErrValidation) {
			h.Logger.Warn("API", fmt.Sprintf("CreateTour: validation failed: %v", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateTour: failed: %v", err))
		http.Error(w, "Failed to create tour: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateTour: created tour %s", id))

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourId")

	var input models.TourInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTour: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.TourService.UpdateTour(tourID, input); err != nil {
		if errors.Is(err, tours.ErrValidation) {
			h.Logger.Warn("API", fmt.Sprintf("UpdateTour: validation failed: %v", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Tour not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateTour: failed: %v", err))
		http.Error(w, "Failed to update tour: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateTour: updated tour %s", tourID))

	writeJSON(w, http.StatusOK, map[string]string{"id": tourID})
}

// PatchTour is the autosave endpoint. A patch against a deleted tour still
// answers 200 with the id; the client quietly drops that delta.
func (h *Handler) PatchTour(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourId")

	var patch models.TourPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.Logger.Error("API", fmt.Sprintf("PatchTour: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.TourService.PatchTourDraft(tourID, patch)
	if err != nil {
		if errors.Is(err, tours.ErrValidation) {
			h.Logger.Warn("API", fmt.Sprintf("PatchTour: validation failed: %v", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("PatchTour: failed: %v", err))
		http.Error(w, "Failed to patch tour: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourId")
	h.Logger.Info("API", fmt.Sprintf("DeleteTour: tourId=%s", tourID))

	if err := h.TourService.DeleteTour(tourID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteTour: failed: %v", err))
		http.Error(w, "Could not delete tour: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Logger.Info("API", "DeleteTour: tour deleted successfully")

	w.WriteHeader(http.StatusNoContent)
}

type attachImageRequest struct {
	StorageID string `json:"storage_id"`
}

func (h *Handler) AttachMainImage(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "tourId")

	var req attachImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.StorageID == "" {
		http.Error(w, "storage_id is required", http.StatusBadRequest)
		return
	}

	if err := h.TourService.AttachMainImage(tourID, req.StorageID); err != nil {
		if errors.Is(err, tours.ErrNoOwner) {
			h.Logger.Warn("API", fmt.Sprintf("AttachMainImage: no persisted tour %s", tourID))
			http.Error(w, "Tour does not exist yet, save it before attaching images", http.StatusConflict)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("AttachMainImage: failed: %v", err))
		http.Error(w, "Failed to attach image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": tourID, "main_image": req.StorageID})
}

func (h *Handler) AttachActivityImage(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityId")

	var req attachImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.StorageID == "" {
		http.Error(w, "storage_id is required", http.StatusBadRequest)
		return
	}

	if err := h.TourService.AttachActivityImage(activityID, req.StorageID); err != nil {
		if errors.Is(err, tours.ErrNoOwner) {
			h.Logger.Warn("API", fmt.Sprintf("AttachActivityImage: no persisted activity %s", activityID))
			http.Error(w, "Activity does not exist yet, save the tour before attaching images", http.StatusConflict)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("AttachActivityImage: failed: %v", err))
		http.Error(w, "Failed to attach image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": activityID, "image": req.StorageID})
}

func (h *Handler) ClearActivityImage(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityId")

	if err := h.TourService.ClearActivityImage(activityID); err != nil {
		if errors.Is(err, tours.ErrNoOwner) {
			http.Error(w, "Activity not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ClearActivityImage: failed: %v", err))
		http.Error(w, "Failed to clear image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
