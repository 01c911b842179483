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

var (
	ErrNotFound = errors.New("record not found")
	// ErrSpaceTypeInUse rejects deleting a category that spaces still reference.
	ErrSpaceTypeInUse = errors.New("space type is still referenced by existing spaces")
)

type DB struct {
	Bun *bun.DB
}

// ---------------- SPACES ----------------

// GetSpaceByID → one space joined with its category, if any
func (d *DB) GetSpaceByID(id string) (*models.SpaceWithType, error) {
	var space models.Space
	err := d.Bun.NewSelect().
		Model(&space).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	result := &models.SpaceWithType{Space: space}
	if space.RoomTypeID != "" {
		spaceType, err := d.GetSpaceTypeByID(space.RoomTypeID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		result.SpaceType = spaceType
	}
	return result, nil
}

// ListSpaces → spaces with resolved categories, optionally filtered
func (d *DB) ListSpaces(filter models.SpaceFilter) ([]models.SpaceWithType, error) {
	var spaces []models.Space
	q := d.Bun.NewSelect().
		Model(&spaces).
		Order("created_at DESC")
	if filter.OnlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	if filter.RoomType != "" {
		q = q.Where("room_type = ?", filter.RoomType)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}

	types, err := d.ListSpaceTypes(false)
	if err != nil {
		return nil, err
	}
	typesByID := make(map[string]*models.SpaceType, len(types))
	for i := range types {
		typesByID[types[i].ID] = &types[i]
	}

	result := make([]models.SpaceWithType, 0, len(spaces))
	for _, space := range spaces {
		result = append(result, models.SpaceWithType{
			Space:     space,
			SpaceType: typesByID[space.RoomTypeID],
		})
	}
	return result, nil
}

// ListRoomTypes → distinct room_type slugs in use
func (d *DB) ListRoomTypes() ([]string, error) {
	var types []string
	err := d.Bun.NewSelect().
		ColumnExpr("DISTINCT room_type").
		Table("spaces").
		Order("room_type").
		Scan(context.Background(), &types)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

// CreateSpace → insert new space
func (d *DB) CreateSpace(space models.Space) error {
	_, err := d.Bun.NewInsert().Model(&space).Exec(context.Background())
	return err
}

// PatchSpace applies the non-nil patch fields. found is false when the space
// no longer exists; callers treat that as a benign no-op.
func (d *DB) PatchSpace(id string, patch models.SpacePatch, updatedAt time.Time) (bool, error) {
	ctx := context.Background()

	var space models.Space
	err := d.Bun.NewSelect().
		Model(&space).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	columns := []string{"updated_at"}
	space.UpdatedAt = updatedAt

	if patch.Name != nil {
		space.Name = *patch.Name
		columns = append(columns, "name")
	}
	if patch.Description != nil {
		space.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.Capacity != nil {
		space.Capacity = *patch.Capacity
		columns = append(columns, "capacity")
	}
	if patch.AreaSqm != nil {
		space.AreaSqm = *patch.AreaSqm
		columns = append(columns, "area_sqm")
	}
	if patch.Floor != nil {
		space.Floor = *patch.Floor
		columns = append(columns, "floor")
	}
	if patch.Amenities != nil {
		space.Amenities = *patch.Amenities
		columns = append(columns, "amenities")
	}
	if patch.RoomType != nil {
		space.RoomType = *patch.RoomType
		columns = append(columns, "room_type")
	}
	if patch.RoomTypeID != nil {
		space.RoomTypeID = *patch.RoomTypeID
		columns = append(columns, "room_type_id")
	}
	if patch.PricePerNight != nil {
		space.PricePerNight = *patch.PricePerNight
		columns = append(columns, "price_per_night")
	}
	if patch.DiscountPercent != nil {
		space.DiscountPercent = *patch.DiscountPercent
		columns = append(columns, "discount_percent")
	}
	if patch.HourlyRate != nil {
		space.HourlyRate = *patch.HourlyRate
		columns = append(columns, "hourly_rate")
	}
	if patch.Images != nil {
		space.Images = *patch.Images
		columns = append(columns, "images")
	}
	if patch.IsAvailable != nil {
		space.IsAvailable = *patch.IsAvailable
		columns = append(columns, "is_available")
	}

	_, err = d.Bun.NewUpdate().
		Model(&space).
		Column(columns...).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return true, err
	}
	return true, nil
}

// DeleteSpace → remove a space by ID
func (d *DB) DeleteSpace(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Space)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ---------------- SPACE TYPES ----------------

// ListSpaceTypes → categories sorted by order_index
func (d *DB) ListSpaceTypes(onlyActive bool) ([]models.SpaceType, error) {
	var types []models.SpaceType
	q := d.Bun.NewSelect().
		Model(&types).
		Order("order_index")
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}
	if types == nil {
		types = []models.SpaceType{}
	}
	return types, nil
}

// GetSpaceTypeByID → fetch one category
func (d *DB) GetSpaceTypeByID(id string) (*models.SpaceType, error) {
	var spaceType models.SpaceType
	err := d.Bun.NewSelect().
		Model(&spaceType).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &spaceType, nil
}

// CreateSpaceType inserts a category at the end of the ordering: it gets
// max(order_index)+1 and max(type_id)+1 of what exists.
func (d *DB) CreateSpaceType(spaceType models.SpaceType) (models.SpaceType, error) {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var maxOrder, maxTypeID sql.NullInt64
		err := tx.NewSelect().
			Model((*models.SpaceType)(nil)).
			ColumnExpr("MAX(order_index)").
			Scan(ctx, &maxOrder)
		if err != nil {
			return fmt.Errorf("max order_index: %w", err)
		}
		err = tx.NewSelect().
			Model((*models.SpaceType)(nil)).
			ColumnExpr("MAX(type_id)").
			Scan(ctx, &maxTypeID)
		if err != nil {
			return fmt.Errorf("max type_id: %w", err)
		}

		spaceType.OrderIndex = int(maxOrder.Int64) + 1
		spaceType.TypeID = int(maxTypeID.Int64) + 1

		_, err = tx.NewInsert().Model(&spaceType).Exec(ctx)
		return err
	})
	if err != nil {
		return models.SpaceType{}, err
	}
	return spaceType, nil
}

// PatchSpaceType applies the non-nil patch fields to an existing category.
func (d *DB) PatchSpaceType(id string, patch models.SpaceTypePatch, updatedAt time.Time) (bool, error) {
	ctx := context.Background()

	spaceType, err := d.GetSpaceTypeByID(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	columns := []string{"updated_at"}
	spaceType.UpdatedAt = updatedAt

	if patch.Name != nil {
		spaceType.Name = *patch.Name
		columns = append(columns, "name")
	}
	if patch.Slug != nil {
		spaceType.Slug = *patch.Slug
		columns = append(columns, "slug")
	}
	if patch.DisplayName != nil {
		spaceType.DisplayName = *patch.DisplayName
		columns = append(columns, "display_name")
	}
	if patch.IsActive != nil {
		spaceType.IsActive = *patch.IsActive
		columns = append(columns, "is_active")
	}

	_, err = d.Bun.NewUpdate().
		Model(spaceType).
		Column(columns...).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return true, err
	}
	return true, nil
}

// UpdateSpaceTypesOrder applies a batch of {id, order_index} writes as one
// transaction, the persisted half of a drag-and-drop reorder.
func (d *DB) UpdateSpaceTypesOrder(updates []models.OrderUpdate, updatedAt time.Time) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, update := range updates {
			_, err := tx.NewUpdate().
				Model((*models.SpaceType)(nil)).
				Set("order_index = ?", update.OrderIndex).
				Set("updated_at = ?", updatedAt).
				Where("id = ?", update.ID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("reorder category %s: %w", update.ID, err)
			}
		}
		return nil
	})
}

// DeleteSpaceType refuses to delete a category while any space references it.
func (d *DB) DeleteSpaceType(id string) error {
	ctx := context.Background()

	inUse, err := d.Bun.NewSelect().
		Model((*models.Space)(nil)).
		Where("room_type_id = ?", id).
		Exists(ctx)
	if err != nil {
		return err
	}
	if inUse {
		return ErrSpaceTypeInUse
	}

	_, err = d.Bun.NewDelete().
		Model((*models.SpaceType)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
