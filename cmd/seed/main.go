package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-catalog/internal/config"
	"ms-catalog/internal/models"
)

// Dev helper: drops the catalog tables, recreates them from the models and
// loads a small sample data set. Not for production databases.

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Dropping tables...")
	_ = dropTables(ctx, db)

	log.Println("Creating tables...")
	_ = createTables(ctx, db)

	log.Println("Seeding sample data...")
	_ = seedData(ctx, db)

	log.Println("✅ Done.")
}

func dropTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Activity)(nil), (*models.TourDay)(nil), (*models.Tour)(nil),
		(*models.Space)(nil), (*models.SpaceType)(nil),
	}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
	return nil
}

func createTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Tour)(nil), (*models.TourDay)(nil), (*models.Activity)(nil),
		(*models.SpaceType)(nil), (*models.Space)(nil),
	}
	for _, m := range tables {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("❌ Failed to create table for %T: %v", m, err)
		}
	}
	return nil
}

func seedData(ctx context.Context, db *bun.DB) error {
	now := time.Now()

	tour := models.Tour{
		ID:               "tour-altai-01",
		Title:            "Altai Highlights",
		Description:      "A week across the Altai mountains with guided hikes and river rafting.",
		Region:           "Altai",
		DurationDays:     7,
		Price:            55000,
		DiscountPercent:  29,
		MaxParticipants:  12,
		DifficultyLevel:  models.DifficultyMedium,
		IncludedServices: []string{"transfer", "breakfast", "guide"},
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	_, _ = db.NewInsert().Model(&tour).Exec(ctx)

	days := []models.TourDay{
		{ID: "day-altai-1", TourID: tour.ID, DayNumber: 1, Accommodation: "Hotel Katun", CreatedAt: now, UpdatedAt: now},
		{ID: "day-altai-2", TourID: tour.ID, DayNumber: 2, Accommodation: "Mountain camp", CreatedAt: now, UpdatedAt: now},
	}
	_, _ = db.NewInsert().Model(&days).Exec(ctx)

	activities := []models.Activity{
		{
			ID: "act-altai-1", TourDayID: "day-altai-1",
			Name: "Airport transfer", Description: "Group transfer from the airport to the hotel.",
			Type: models.ActivityTransfer, TimeStart: "10:00", TimeEnd: "12:00",
			OrderNumber: 1, IsIncluded: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "act-altai-2", TourDayID: "day-altai-1",
			Name: "Welcome dinner", Description: "Regional cuisine at the hotel restaurant.",
			Type: models.ActivityMeal, TimeStart: "19:00", TimeEnd: "21:00",
			OrderNumber: 2, IsIncluded: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "act-altai-3", TourDayID: "day-altai-2",
			Name: "Rafting", Description: "Half-day rafting on the Katun river.",
			Type: models.ActivityExcursion, TimeStart: "09:00", TimeEnd: "14:00",
			OrderNumber: 1, IsIncluded: false, Price: 3500, CreatedAt: now, UpdatedAt: now,
		},
	}
	_, _ = db.NewInsert().Model(&activities).Exec(ctx)

	spaceTypes := []models.SpaceType{
		{ID: "st-standard", TypeID: 1, Name: "Standard", Slug: "standard", DisplayName: "Standard Room", OrderIndex: 1, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: "st-deluxe", TypeID: 2, Name: "Deluxe", Slug: "deluxe", DisplayName: "Deluxe Room", OrderIndex: 2, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: "st-suite", TypeID: 3, Name: "Suite", Slug: "suite", DisplayName: "Suite", OrderIndex: 3, IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	_, _ = db.NewInsert().Model(&spaceTypes).Exec(ctx)

	spaces := []models.Space{
		{
			ID: "space-101", Name: "Room 101", Description: "Cozy standard room with a garden view.",
			Capacity: 2, AreaSqm: 24.5, Floor: 1, Amenities: []string{"wifi", "tv"},
			RoomType: "standard", RoomTypeID: "st-standard", PricePerNight: 4500,
			Images: []string{}, IsAvailable: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "space-201", Name: "Room 201", Description: "Deluxe room with a balcony and sea view.",
			Capacity: 3, AreaSqm: 38.0, Floor: 2, Amenities: []string{"wifi", "tv", "minibar"},
			RoomType: "deluxe", RoomTypeID: "st-deluxe", PricePerNight: 7800, DiscountPercent: 10,
			Images: []string{}, IsAvailable: true, CreatedAt: now, UpdatedAt: now,
		},
	}
	_, _ = db.NewInsert().Model(&spaces).Exec(ctx)

	return nil
}
