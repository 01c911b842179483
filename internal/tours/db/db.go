package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-catalog/internal/models"
)

// ErrNotFound marks a read for a record that does not exist.
var ErrNotFound = errors.New("record not found")

type DB struct {
	Bun *bun.DB
}

// ---------------- TOURS ----------------

// GetTourByID → fetch one tour by its ID
func (d *DB) GetTourByID(id string) (*models.Tour, error) {
	var tour models.Tour
	err := d.Bun.NewSelect().
		Model(&tour).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

// ListTours → fetch tours, optionally only active ones or by region
func (d *DB) ListTours(filter models.TourFilter) ([]models.Tour, error) {
	var tours []models.Tour
	q := d.Bun.NewSelect().
		Model(&tours).
		Order("created_at DESC")
	if filter.OnlyActive {
		q = q.Where("is_active = ?", true)
	}
	if filter.Region != "" {
		q = q.Where("region = ?", filter.Region)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}
	if tours == nil {
		tours = []models.Tour{}
	}
	return tours, nil
}

// ListRegions → distinct regions across all tours
func (d *DB) ListRegions() ([]string, error) {
	var regions []string
	err := d.Bun.NewSelect().
		ColumnExpr("DISTINCT region").
		Table("tours").
		Order("region").
		Scan(context.Background(), &regions)
	if err != nil {
		return nil, err
	}
	if regions == nil {
		regions = []string{}
	}
	return regions, nil
}

// GetTourWithDetails → tour plus its days sorted by day_number, each day
// carrying its activities sorted by order_number
func (d *DB) GetTourWithDetails(id string) (*models.TourDetails, error) {
	tour, err := d.GetTourByID(id)
	if err != nil {
		return nil, err
	}

	days, err := d.GetTourDays(id)
	if err != nil {
		return nil, err
	}

	details := &models.TourDetails{
		Tour: *tour,
		Days: make([]models.DayWithActivities, 0, len(days)),
	}

	for _, day := range days {
		activities, err := d.GetDayActivities(day.ID)
		if err != nil {
			return nil, err
		}
		details.Days = append(details.Days, models.DayWithActivities{
			TourDay:    day,
			Activities: activities,
		})
	}

	return details, nil
}

// GetTourDays → days of a tour ordered by day_number
func (d *DB) GetTourDays(tourID string) ([]models.TourDay, error) {
	var days []models.TourDay
	err := d.Bun.NewSelect().
		Model(&days).
		Where("tour_id = ?", tourID).
		Order("day_number").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []models.TourDay{}
	}
	return days, nil
}

// GetDayActivities → activities of a day ordered by order_number
func (d *DB) GetDayActivities(dayID string) ([]models.Activity, error) {
	var activities []models.Activity
	err := d.Bun.NewSelect().
		Model(&activities).
		Where("tour_day_id = ?", dayID).
		Order("order_number").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return activities, nil
}

// GetActivityByID → fetch one activity
func (d *DB) GetActivityByID(id string) (*models.Activity, error) {
	var activity models.Activity
	err := d.Bun.NewSelect().
		Model(&activity).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// ---------------- AGGREGATE WRITES ----------------

// CreateTour inserts the tour with all of its days and activities in one
// transaction. Rows arrive fully prepared (ids, timestamps) from the service.
func (d *DB) CreateTour(tour models.Tour, days []models.DayWithActivities) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&tour).Exec(ctx); err != nil {
			return fmt.Errorf("insert tour: %w", err)
		}
		for i := range days {
			day := days[i].TourDay
			if _, err := tx.NewInsert().Model(&day).Exec(ctx); err != nil {
				return fmt.Errorf("insert day %d: %w", day.DayNumber, err)
			}
			for j := range days[i].Activities {
				activity := days[i].Activities[j]
				if _, err := tx.NewInsert().Model(&activity).Exec(ctx); err != nil {
					return fmt.Errorf("insert activity %d of day %d: %w", activity.OrderNumber, day.DayNumber, err)
				}
			}
		}
		return nil
	})
}

// UpdateTour rewrites the tour row only, leaving days and activities as they
// are. Used when a submit carries no nested day list.
func (d *DB) UpdateTour(tour models.Tour) error {
	_, err := d.Bun.NewUpdate().
		Model(&tour).
		Column("title", "description", "region", "duration_days", "price",
			"discount_percent", "max_participants", "difficulty_level",
			"included_services", "main_image", "is_active", "updated_at").
		Where("id = ?", tour.ID).
		Exec(context.Background())
	return err
}

// ReplaceTourAggregate updates the tour row and reconciles the nested lists:
// days missing from the new list are deleted with their activities, kept days
// are patched, new days inserted, and each day's activities reconciled the
// same way. All inside one transaction.
func (d *DB) ReplaceTourAggregate(tour models.Tour, days []models.DayWithActivities) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model(&tour).
			Column("title", "description", "region", "duration_days", "price",
				"discount_percent", "max_participants", "difficulty_level",
				"included_services", "main_image", "is_active", "updated_at").
			Where("id = ?", tour.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update tour: %w", err)
		}

		var existingDays []models.TourDay
		err = tx.NewSelect().
			Model(&existingDays).
			Where("tour_id = ?", tour.ID).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("load existing days: %w", err)
		}

		keptDays := make(map[string]bool, len(days))
		for _, day := range days {
			keptDays[day.ID] = true
		}

		for _, existing := range existingDays {
			if keptDays[existing.ID] {
				continue
			}
			// Activities go first so the day never leaves orphans behind.
			if _, err := tx.NewDelete().
				Model((*models.Activity)(nil)).
				Where("tour_day_id = ?", existing.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("delete activities of removed day: %w", err)
			}
			if _, err := tx.NewDelete().
				Model((*models.TourDay)(nil)).
				Where("id = ?", existing.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("delete removed day: %w", err)
			}
		}

		existingByID := make(map[string]bool, len(existingDays))
		for _, existing := range existingDays {
			existingByID[existing.ID] = true
		}

		for i := range days {
			day := days[i].TourDay
			if existingByID[day.ID] {
				_, err = tx.NewUpdate().
					Model(&day).
					Column("day_number", "accommodation", "auto_distance_km",
						"walk_distance_km", "updated_at").
					Where("id = ?", day.ID).
					Exec(ctx)
				if err != nil {
					return fmt.Errorf("update day %d: %w", day.DayNumber, err)
				}
			} else {
				if _, err := tx.NewInsert().Model(&day).Exec(ctx); err != nil {
					return fmt.Errorf("insert day %d: %w", day.DayNumber, err)
				}
			}

			if err := reconcileActivities(ctx, tx, day.ID, days[i].Activities); err != nil {
				return err
			}
		}
		return nil
	})
}

func reconcileActivities(ctx context.Context, tx bun.Tx, dayID string, activities []models.Activity) error {
	var existing []models.Activity
	err := tx.NewSelect().
		Model(&existing).
		Where("tour_day_id = ?", dayID).
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("load existing activities: %w", err)
	}

	kept := make(map[string]bool, len(activities))
	for _, activity := range activities {
		kept[activity.ID] = true
	}

	for _, old := range existing {
		if kept[old.ID] {
			continue
		}
		if _, err := tx.NewDelete().
			Model((*models.Activity)(nil)).
			Where("id = ?", old.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete removed activity: %w", err)
		}
	}

	existingByID := make(map[string]bool, len(existing))
	for _, old := range existing {
		existingByID[old.ID] = true
	}

	for i := range activities {
		activity := activities[i]
		if existingByID[activity.ID] {
			_, err = tx.NewUpdate().
				Model(&activity).
				Column("name", "description", "type", "time_start", "time_end",
					"price", "order_number", "is_included", "image", "updated_at").
				Where("id = ?", activity.ID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("update activity %d: %w", activity.OrderNumber, err)
			}
		} else {
			if _, err := tx.NewInsert().Model(&activity).Exec(ctx); err != nil {
				return fmt.Errorf("insert activity %d: %w", activity.OrderNumber, err)
			}
		}
	}
	return nil
}

// DeleteTour removes the tour with all of its days and activities. Children
// are deleted before the parent so no dangling rows survive a partial failure.
func (d *DB) DeleteTour(id string) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dayIDs := tx.NewSelect().
			Model((*models.TourDay)(nil)).
			Column("id").
			Where("tour_id = ?", id)

		if _, err := tx.NewDelete().
			Model((*models.Activity)(nil)).
			Where("tour_day_id IN (?)", dayIDs).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete activities: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*models.TourDay)(nil)).
			Where("tour_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete days: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*models.Tour)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete tour: %w", err)
		}
		return nil
	})
}

// ---------------- FIELD PATCHES ----------------

// PatchTour applies a shallow merge of the non-nil patch fields and stamps
// updated_at. found is false when the tour no longer exists; the caller treats
// that as a benign no-op, not an error.
func (d *DB) PatchTour(id string, patch models.TourPatch, updatedAt time.Time) (bool, error) {
	ctx := context.Background()

	tour, err := d.GetTourByID(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	columns := []string{"updated_at"}
	tour.UpdatedAt = updatedAt

	if patch.Title != nil {
		tour.Title = *patch.Title
		columns = append(columns, "title")
	}
	if patch.Description != nil {
		tour.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.Region != nil {
		tour.Region = *patch.Region
		columns = append(columns, "region")
	}
	if patch.DurationDays != nil {
		tour.DurationDays = *patch.DurationDays
		columns = append(columns, "duration_days")
	}
	if patch.Price != nil {
		tour.Price = *patch.Price
		columns = append(columns, "price")
	}
	if patch.DiscountPercent != nil {
		tour.DiscountPercent = *patch.DiscountPercent
		columns = append(columns, "discount_percent")
	}
	if patch.MaxParticipants != nil {
		tour.MaxParticipants = *patch.MaxParticipants
		columns = append(columns, "max_participants")
	}
	if patch.DifficultyLevel != nil {
		tour.DifficultyLevel = *patch.DifficultyLevel
		columns = append(columns, "difficulty_level")
	}
	if patch.IncludedServices != nil {
		tour.IncludedServices = *patch.IncludedServices
		columns = append(columns, "included_services")
	}
	if patch.MainImage != nil {
		tour.MainImage = *patch.MainImage
		columns = append(columns, "main_image")
	}
	if patch.IsActive != nil {
		tour.IsActive = *patch.IsActive
		columns = append(columns, "is_active")
	}

	_, err = d.Bun.NewUpdate().
		Model(tour).
		Column(columns...).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return true, err
	}
	return true, nil
}

// UpdateActivityImage sets the uploaded reference and external URL on one
// activity as a single atomic patch.
func (d *DB) UpdateActivityImage(id, image, imageURL string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Activity)(nil)).
		Where("id = ?", id).
		Set("image = ?", image).
		Set("image_url = ?", imageURL).
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(context.Background())
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}
