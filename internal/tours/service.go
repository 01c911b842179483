package tours

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"

	"ms-catalog/internal/models"
	"ms-catalog/internal/ordering"
	"ms-catalog/internal/pricing"
	"ms-catalog/internal/tours/db"
	"ms-catalog/internal/utils"
)

// ErrValidation wraps field-level validation failures so handlers can answer
// with inline errors instead of a server fault.
var ErrValidation = errors.New("validation failed")

// ErrNoOwner is returned when an image attach targets a record that has not
// been persisted yet.
var ErrNoOwner = errors.New("record does not exist yet, image cannot be attached")

type DBLayer interface {
	GetTourByID(id string) (*models.Tour, error)
	ListTours(filter models.TourFilter) ([]models.Tour, error)
	ListRegions() ([]string, error)
	GetTourWithDetails(id string) (*models.TourDetails, error)
	GetActivityByID(id string) (*models.Activity, error)
	CreateTour(tour models.Tour, days []models.DayWithActivities) error
	UpdateTour(tour models.Tour) error
	ReplaceTourAggregate(tour models.Tour, days []models.DayWithActivities) error
	DeleteTour(id string) error
	PatchTour(id string, patch models.TourPatch, updatedAt time.Time) (bool, error)
	UpdateActivityImage(id, image, imageURL string) error
}

type EventPublisher interface {
	PublishCatalogEvent(event models.CatalogEvent) error
}

type TourService struct {
	DB       DBLayer
	Events   EventPublisher
	validate *validator.Validate
}

func NewTourService(db DBLayer, events EventPublisher) *TourService {
	return &TourService{
		DB:       db,
		Events:   events,
		validate: validator.New(),
	}
}

// ---------------- READS ----------------

func (s *TourService) GetTour(id string) (*models.Tour, error) {
	return s.DB.GetTourByID(id)
}

func (s *TourService) ListTours(filter models.TourFilter) ([]models.Tour, error) {
	return s.DB.ListTours(filter)
}

func (s *TourService) ListRegions() ([]string, error) {
	return s.DB.ListRegions()
}

// GetTourDetails returns the aggregate with the derived original price. The
// original price is recomputed on every read, never stored.
func (s *TourService) GetTourDetails(id string) (*models.TourDetails, error) {
	details, err := s.DB.GetTourWithDetails(id)
	if err != nil {
		return nil, err
	}
	if original, ok := pricing.OriginalPrice(details.Price, details.DiscountPercent); ok {
		details.OriginalPrice = original
	}
	return details, nil
}

// ---------------- AGGREGATE WRITES ----------------

// CreateTour persists a new tour with its nested days and activities and
// returns the new id. Until this succeeds the caller holds all edits
// client-side; no partial autosave is possible without an id.
func (s *TourService) CreateTour(input models.TourInput) (string, error) {
	if err := s.validate.Struct(input); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now()
	tour := tourFromInput(utils.NewID(), input, now, now)
	days := buildDays(tour.ID, input.Days, now)

	if err := s.DB.CreateTour(tour, days); err != nil {
		return "", fmt.Errorf("failed to create tour: %w", err)
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("tour", tour.ID, models.ActionCreated)); err != nil {
		fmt.Printf("Kafka publish error (tour created): %v\n", err)
	}

	return tour.ID, nil
}

// UpdateTour is the full-form submit: the whole aggregate is written at once,
// nested days/activities reconciled against what is stored.
func (s *TourService) UpdateTour(id string, input models.TourInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	existing, err := s.DB.GetTourByID(id)
	if err != nil {
		return fmt.Errorf("tour %s not found: %w", id, err)
	}

	now := time.Now()
	tour := tourFromInput(id, input, existing.CreatedAt, now)

	// A nil day list means "leave nested records untouched"; an empty one
	// means "delete them all".
	if input.Days == nil {
		if err := s.DB.UpdateTour(tour); err != nil {
			return fmt.Errorf("failed to update tour: %w", err)
		}
	} else {
		days := buildDays(id, input.Days, now)
		if err := s.DB.ReplaceTourAggregate(tour, days); err != nil {
			return fmt.Errorf("failed to update tour: %w", err)
		}
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("tour", id, models.ActionUpdated)); err != nil {
		fmt.Printf("Kafka publish error (tour updated): %v\n", err)
	}

	return nil
}

func (s *TourService) DeleteTour(id string) error {
	if _, err := s.DB.GetTourByID(id); err != nil {
		return fmt.Errorf("tour %s not found: %w", id, err)
	}

	if err := s.DB.DeleteTour(id); err != nil {
		return fmt.Errorf("failed to delete tour %s: %w", id, err)
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("tour", id, models.ActionDeleted)); err != nil {
		fmt.Printf("Kafka publish error (tour deleted): %v\n", err)
	}

	return nil
}

// ---------------- AUTOSAVE ----------------

// PatchTourDraft is the blur-triggered autosave: fields equal to what is
// already stored are dropped, and if nothing is left no write happens at all.
// A missing tour is a benign no-op (the record may have been deleted by a
// concurrent editor) and still returns the id.
func (s *TourService) PatchTourDraft(id string, patch models.TourPatch) (string, error) {
	if err := s.validate.Struct(patch); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	current, err := s.DB.GetTourByID(id)
	if errors.Is(err, db.ErrNotFound) {
		fmt.Printf("Tour %s not found, skipping autosave\n", id)
		return id, nil
	}
	if err != nil {
		return "", err
	}

	patch = dropUnchanged(patch, current)
	if patch.IsEmpty() {
		return id, nil
	}

	found, err := s.DB.PatchTour(id, patch, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to patch tour %s: %w", id, err)
	}
	if !found {
		fmt.Printf("Tour %s disappeared mid-patch, skipping\n", id)
		return id, nil
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("tour", id, models.ActionUpdated)); err != nil {
		fmt.Printf("Kafka publish error (tour patched): %v\n", err)
	}

	return id, nil
}

// ---------------- IMAGE ATTACH ----------------

// AttachMainImage records an uploaded storage reference on the tour. Unlike
// the autosave path this requires the owner to exist: a tour still being
// created has nowhere to attach to.
func (s *TourService) AttachMainImage(id, storageID string) error {
	if _, err := s.DB.GetTourByID(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNoOwner
		}
		return err
	}

	found, err := s.DB.PatchTour(id, models.TourPatch{MainImage: &storageID}, time.Now())
	if err != nil {
		return fmt.Errorf("failed to attach image to tour %s: %w", id, err)
	}
	if !found {
		return ErrNoOwner
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("tour", id, models.ActionUpdated)); err != nil {
		fmt.Printf("Kafka publish error (tour image): %v\n", err)
	}
	return nil
}

// AttachActivityImage records an uploaded reference on one activity. The
// external image_url is kept: the uploaded reference simply wins for display.
func (s *TourService) AttachActivityImage(activityID, storageID string) error {
	activity, err := s.DB.GetActivityByID(activityID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNoOwner
		}
		return err
	}

	if err := s.DB.UpdateActivityImage(activityID, storageID, activity.ImageURL); err != nil {
		return fmt.Errorf("failed to attach image to activity %s: %w", activityID, err)
	}

	if err := s.Events.PublishCatalogEvent(models.NewCatalogEvent("tour", activity.TourDayID, models.ActionUpdated)); err != nil {
		fmt.Printf("Kafka publish error (activity image): %v\n", err)
	}
	return nil
}

// ClearActivityImage unsets both the uploaded reference and the external URL.
func (s *TourService) ClearActivityImage(activityID string) error {
	if _, err := s.DB.GetActivityByID(activityID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNoOwner
		}
		return err
	}
	if err := s.DB.UpdateActivityImage(activityID, "", ""); err != nil {
		return fmt.Errorf("failed to clear image of activity %s: %w", activityID, err)
	}
	return nil
}

// ---------------- HELPERS ----------------

func tourFromInput(id string, input models.TourInput, createdAt, updatedAt time.Time) models.Tour {
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	services := input.IncludedServices
	if services == nil {
		services = []string{}
	}
	return models.Tour{
		ID:               id,
		Title:            input.Title,
		Description:      input.Description,
		Region:           input.Region,
		DurationDays:     input.DurationDays,
		Price:            input.Price,
		DiscountPercent:  input.DiscountPercent,
		MaxParticipants:  input.MaxParticipants,
		DifficultyLevel:  input.DifficultyLevel,
		IncludedServices: services,
		MainImage:        input.MainImage,
		IsActive:         isActive,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}

// buildDays turns the submitted day list into storable rows. New records get
// fresh ids; day and activity order keys are renumbered to the dense 1..N
// sequence so drift from client-side edits never reaches the store.
func buildDays(tourID string, inputs []models.TourDayInput, now time.Time) []models.DayWithActivities {
	days := make([]models.DayWithActivities, 0, len(inputs))
	for _, in := range inputs {
		dayID := in.ID
		if dayID == "" {
			dayID = utils.NewID()
		}
		day := models.DayWithActivities{
			TourDay: models.TourDay{
				ID:            dayID,
				TourID:        tourID,
				DayNumber:     in.DayNumber,
				Accommodation: in.Accommodation,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		}
		if in.AutoDistanceKm != nil {
			day.AutoDistanceKm = *in.AutoDistanceKm
		}
		if in.WalkDistanceKm != nil {
			day.WalkDistanceKm = *in.WalkDistanceKm
		}

		activities := make([]models.Activity, 0, len(in.Activities))
		for _, act := range in.Activities {
			actID := act.ID
			if actID == "" {
				actID = utils.NewID()
			}
			row := models.Activity{
				ID:          actID,
				TourDayID:   dayID,
				Name:        act.Name,
				Description: act.Description,
				Type:        act.Type,
				TimeStart:   act.TimeStart,
				TimeEnd:     act.TimeEnd,
				OrderNumber: act.OrderNumber,
				IsIncluded:  act.IsIncluded,
				Image:       act.Image,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if act.Price != nil {
				row.Price = *act.Price
			}
			activities = append(activities, row)
		}
		ordering.Renumber(activities, func(a *models.Activity, key int) { a.OrderNumber = key })
		day.Activities = activities
		days = append(days, day)
	}
	ordering.Renumber(days, func(d *models.DayWithActivities, key int) { d.DayNumber = key })
	return days
}

// dropUnchanged removes patch fields whose value already matches the stored
// record, so an autosave with nothing new issues zero writes.
func dropUnchanged(patch models.TourPatch, current *models.Tour) models.TourPatch {
	if patch.Title != nil && *patch.Title == current.Title {
		patch.Title = nil
	}
	if patch.Description != nil && *patch.Description == current.Description {
		patch.Description = nil
	}
	if patch.Region != nil && *patch.Region == current.Region {
		patch.Region = nil
	}
	if patch.DurationDays != nil && *patch.DurationDays == current.DurationDays {
		patch.DurationDays = nil
	}
	if patch.Price != nil && *patch.Price == current.Price {
		patch.Price = nil
	}
	if patch.DiscountPercent != nil && *patch.DiscountPercent == current.DiscountPercent {
		patch.DiscountPercent = nil
	}
	if patch.MaxParticipants != nil && *patch.MaxParticipants == current.MaxParticipants {
		patch.MaxParticipants = nil
	}
	if patch.DifficultyLevel != nil && *patch.DifficultyLevel == current.DifficultyLevel {
		patch.DifficultyLevel = nil
	}
	if patch.IncludedServices != nil && reflect.DeepEqual(*patch.IncludedServices, current.IncludedServices) {
		patch.IncludedServices = nil
	}
	if patch.MainImage != nil && *patch.MainImage == current.MainImage {
		patch.MainImage = nil
	}
	if patch.IsActive != nil && *patch.IsActive == current.IsActive {
		patch.IsActive = nil
	}
	return patch
}
