package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-catalog/internal/logger"
	"ms-catalog/internal/models"
	"ms-catalog/internal/spaces"
	"ms-catalog/internal/spaces/db"
)

type Handler struct {
	SpaceService *spaces.SpaceService
	Logger       *logger.Logger
}

func NewHandler(spaceService *spaces.SpaceService, log *logger.Logger) *Handler {
	return &Handler{
		SpaceService: spaceService,
		Logger:       log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/spaces", func(r chi.Router) {
		r.Get("/", h.ListSpaces)
		r.Get("/room-types", h.ListRoomTypes)
		r.Post("/", h.CreateSpace)
		r.Get("/{spaceId}", h.GetSpace)
		r.Patch("/{spaceId}", h.PatchSpace)
		r.Delete("/{spaceId}", h.DeleteSpace)
	})

	r.Route("/space-types", func(r chi.Router) {
		r.Get("/", h.ListSpaceTypes)
		r.Post("/", h.CreateSpaceType)
		r.Get("/{typeId}", h.GetSpaceType)
		r.Patch("/{typeId}", h.PatchSpaceType)
		r.Put("/order", h.ReorderSpaceTypes)
		r.Delete("/{typeId}", h.DeleteSpaceType)
	})
}

// ---------------- SPACES ----------------

func (h *Handler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	filter := models.SpaceFilter{
		OnlyAvailable: r.URL.Query().Get("only_available") == "true",
		RoomType:      r.URL.Query().Get("room_type"),
	}

	spacesList, err := h.SpaceService.ListSpaces(filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSpaces: failed: %v", err))
		http.Error(w, "Failed to list spaces: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, spacesList)
}

func (h *Handler) ListRoomTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.SpaceService.ListRoomTypes()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListRoomTypes: failed: %v", err))
		http.Error(w, "Failed to list room types: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *Handler) GetSpace(w http.ResponseWriter, r *http.Request) {
	spaceID := chi.URLParam(r, "spaceId")

	space, err := h.SpaceService.GetSpace(spaceID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSpace: space not found: %v", err))
		http.Error(w, "Space not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, space)
}

func (h *Handler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	var input models.SpaceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.SpaceService.CreateSpace(input)
	if err != nil {
		if errors.Is(err, spaces.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateSpace: failed: %v", err))
		http.Error(w, "Failed to create space: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateSpace: created space %s", id))

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) PatchSpace(w http.ResponseWriter, r *http.Request) {
	spaceID := chi.URLParam(r, "spaceId")

	var patch models.SpacePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.SpaceService.PatchSpace(spaceID, patch)
	if err != nil {
		if errors.Is(err, spaces.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("PatchSpace: failed: %v", err))
		http.Error(w, "Failed to patch space: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	spaceID := chi.URLParam(r, "spaceId")

	if err := h.SpaceService.DeleteSpace(spaceID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteSpace: failed: %v", err))
		http.Error(w, "Could not delete space: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------- SPACE TYPES ----------------

func (h *Handler) ListSpaceTypes(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("only_active") == "true"

	types, err := h.SpaceService.ListSpaceTypes(onlyActive)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSpaceTypes: failed: %v", err))
		http.Error(w, "Failed to list space types: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, types)
}

func (h *Handler) GetSpaceType(w http.ResponseWriter, r *http.Request) {
	typeID := chi.URLParam(r, "typeId")

	spaceType, err := h.SpaceService.GetSpaceType(typeID)
	if err != nil {
		http.Error(w, "Space type not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, spaceType)
}

func (h *Handler) CreateSpaceType(w http.ResponseWriter, r *http.Request) {
	var input models.SpaceTypeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.SpaceService.CreateSpaceType(input)
	if err != nil {
		if errors.Is(err, spaces.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateSpaceType: failed: %v", err))
		http.Error(w, "Failed to create space type: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateSpaceType: created %s (order %d)", created.ID, created.OrderIndex))

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) PatchSpaceType(w http.ResponseWriter, r *http.Request) {
	typeID := chi.URLParam(r, "typeId")

	var patch models.SpaceTypePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.SpaceService.PatchSpaceType(typeID, patch); err != nil {
		if errors.Is(err, spaces.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Space type not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("PatchSpaceType: failed: %v", err))
		http.Error(w, "Failed to patch space type: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": typeID})
}

type reorderRequest struct {
	Updates []models.OrderUpdate `json:"updates"`
}

// ReorderSpaceTypes persists a drag-and-drop reorder as one batch. On failure
// the admin UI falls back to the last known-good server ordering.
func (h *Handler) ReorderSpaceTypes(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Updates) == 0 {
		http.Error(w, "updates cannot be empty", http.StatusBadRequest)
		return
	}

	if err := h.SpaceService.ReorderSpaceTypes(req.Updates); err != nil {
		if errors.Is(err, spaces.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ReorderSpaceTypes: failed: %v", err))
		http.Error(w, "Failed to reorder space types: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("ReorderSpaceTypes: %d categories renumbered", len(req.Updates)))

	w.WriteHeader(http.StatusNoContent)
}

// DeleteSpaceType surfaces the referential-integrity rejection verbatim.
func (h *Handler) DeleteSpaceType(w http.ResponseWriter, r *http.Request) {
	typeID := chi.URLParam(r, "typeId")

	if err := h.SpaceService.DeleteSpaceType(typeID); err != nil {
		if errors.Is(err, db.ErrSpaceTypeInUse) {
			h.Logger.Warn("API", fmt.Sprintf("DeleteSpaceType: %s still in use", typeID))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Space type not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteSpaceType: failed: %v", err))
		http.Error(w, "Could not delete space type: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
