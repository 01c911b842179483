package spaces

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"ms-catalog/internal/models"
	"ms-catalog/internal/spaces/db"
	"ms-catalog/internal/utils"
)

// ErrValidation wraps field-level validation failures.
var ErrValidation = errors.New("validation failed")

type DBLayer interface {
	GetSpaceByID(id string) (*models.SpaceWithType, error)
	ListSpaces(filter models.SpaceFilter) ([]models.SpaceWithType, error)
	ListRoomTypes() ([]string, error)
	CreateSpace(space models.Space) error
	PatchSpace(id string, patch models.SpacePatch, updatedAt time.Time) (bool, error)
	DeleteSpace(id string) error
	ListSpaceTypes(onlyActive bool) ([]models.SpaceType, error)
	GetSpaceTypeByID(id string) (*models.SpaceType, error)
	CreateSpaceType(spaceType models.SpaceType) (models.SpaceType, error)
	PatchSpaceType(id string, patch models.SpaceTypePatch, updatedAt time.Time) (bool, error)
	UpdateSpaceTypesOrder(updates []models.OrderUpdate, updatedAt time.Time) error
	DeleteSpaceType(id string) error
}

type EventPublisher interface {
	PublishCatalogEvent(event models.CatalogEvent) error
}

type SpaceService struct {
	DB       DBLayer
	Events   EventPublisher
	validate *validator.Validate
}

func NewSpaceService(db DBLayer, events EventPublisher) *SpaceService {
	return &SpaceService{
		DB:       db,
		Events:   events,
		validate: validator.New(),
	}
}

// ---------------- SPACES ----------------

func (s *SpaceService) GetSpace(id string) (*models.SpaceWithType, error) {
	return s.DB.GetSpaceByID(id)
}

func (s *SpaceService) ListSpaces(filter models.SpaceFilter) ([]models.SpaceWithType, error) {
	return s.DB.ListSpaces(filter)
}

func (s *SpaceService) ListRoomTypes() ([]string, error) {
	return s.DB.ListRoomTypes()
}

func (s *SpaceService) CreateSpace(input models.SpaceInput) (string, error) {
	if err := s.validate.Struct(input); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now()
	isAvailable := true
	if input.IsAvailable != nil {
		isAvailable = *input.IsAvailable
	}
	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	images := input.Images
	if images == nil {
		images = []string{}
	}

	space := models.Space{
		ID:          utils.NewID(),
		Name:        input.Name,
		Description: input.Description,
		Capacity:    input.Capacity,
		AreaSqm:     input.AreaSqm,
		Amenities:   amenities,
		RoomType:    input.RoomType,
		RoomTypeID:  input.RoomTypeID,
		Images:      images,
		IsAvailable: isAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Floor != nil {
		space.Floor = *input.Floor
	}
	if input.PricePerNight != nil {
		space.PricePerNight = *input.PricePerNight
	}
	if input.DiscountPercent != nil {
		space.DiscountPercent = *input.DiscountPercent
	}
	if input.HourlyRate != nil {
		space.HourlyRate = *input.HourlyRate
	}

	if err := s.DB.CreateSpace(space); err != nil {
		return "", fmt.Errorf("failed to create space: %w", err)
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("space", space.ID, models.ActionCreated)); err != nil {
		fmt.Printf("Kafka publish error (space created): %v\n", err)
	}

	return space.ID, nil
}

// PatchSpace applies a partial update. A missing space is a benign no-op that
// still returns the id.
func (s *SpaceService) PatchSpace(id string, patch models.SpacePatch) (string, error) {
	if err := s.validate.Struct(patch); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	found, err := s.DB.PatchSpace(id, patch, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to patch space %s: %w", id, err)
	}
	if !found {
		fmt.Printf("Space %s not found, skipping update\n", id)
		return id, nil
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("space", id, models.ActionUpdated)); err != nil {
		fmt.Printf("Kafka publish error (space updated): %v\n", err)
	}

	return id, nil
}

func (s *SpaceService) DeleteSpace(id string) error {
	if _, err := s.DB.GetSpaceByID(id); err != nil {
		return fmt.Errorf("space %s not found: %w", id, err)
	}

	if err := s.DB.DeleteSpace(id); err != nil {
		return fmt.Errorf("failed to delete space %s: %w", id, err)
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("space", id, models.ActionDeleted)); err != nil {
		fmt.Printf("Kafka publish error (space deleted): %v\n", err)
	}

	return nil
}

// ---------------- SPACE TYPES ----------------

func (s *SpaceService) ListSpaceTypes(onlyActive bool) ([]models.SpaceType, error) {
	return s.DB.ListSpaceTypes(onlyActive)
}

func (s *SpaceService) GetSpaceType(id string) (*models.SpaceType, error) {
	return s.DB.GetSpaceTypeByID(id)
}

func (s *SpaceService) CreateSpaceType(input models.SpaceTypeInput) (models.SpaceType, error) {
	if err := s.validate.Struct(input); err != nil {
		return models.SpaceType{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now()
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Name
	}

	spaceType := models.SpaceType{
		ID:          utils.NewID(),
		Name:        input.Name,
		Slug:        input.Slug,
		DisplayName: displayName,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.DB.CreateSpaceType(spaceType)
	if err != nil {
		return models.SpaceType{}, fmt.Errorf("failed to create space type: %w", err)
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("space_type", created.ID, models.ActionCreated)); err != nil {
		fmt.Printf("Kafka publish error (space type created): %v\n", err)
	}

	return created, nil
}

func (s *SpaceService) PatchSpaceType(id string, patch models.SpaceTypePatch) error {
	if err := s.validate.Struct(patch); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	found, err := s.DB.PatchSpaceType(id, patch, time.Now())
	if err != nil {
		return fmt.Errorf("failed to patch space type %s: %w", id, err)
	}
	if !found {
		return fmt.Errorf("space type %s not found: %w", id, db.ErrNotFound)
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("space_type", id, models.ActionUpdated)); err != nil {
		fmt.Printf("Kafka publish error (space type updated): %v\n", err)
	}

	return nil
}

// ReorderSpaceTypes persists a batch of order updates as one logical write.
// If the batch fails, nothing is applied and the caller reverts to the last
// server-provided ordering.
func (s *SpaceService) ReorderSpaceTypes(updates []models.OrderUpdate) error {
	for _, update := range updates {
		if err := s.validate.Struct(update); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	if err := s.DB.UpdateSpaceTypesOrder(updates, time.Now()); err != nil {
		return fmt.Errorf("failed to reorder space types: %w", err)
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("space_type", "", models.ActionReordered)); err != nil {
		fmt.Printf("Kafka publish error (space types reordered): %v\n", err)
	}

	return nil
}

// DeleteSpaceType fails with db.ErrSpaceTypeInUse while any space still
// references the category; the category stays present.
func (s *SpaceService) DeleteSpaceType(id string) error {
	if _, err := s.DB.GetSpaceTypeByID(id); err != nil {
		return fmt.Errorf("space type %s not found: %w", id, err)
	}

	if err := s.DB.DeleteSpaceType(id); err != nil {
		return err
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("space_type", id, models.ActionDeleted)); err != nil {
		fmt.Printf("Kafka publish error (space type deleted): %v\n", err)
	}

	return nil
}
