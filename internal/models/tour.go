package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Difficulty levels accepted for a tour.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Activity types form a closed enum.
const (
	ActivityTransfer     = "transfer"
	ActivityMeal         = "meal"
	ActivityExcursion    = "excursion"
	ActivityRest         = "rest"
	ActivityEveningEvent = "evening_event"
)

type Tour struct {
	bun.BaseModel `bun:"table:tours"`

	ID               string    `bun:"id,pk" json:"id"`
	Title            string    `bun:"title,notnull" json:"title"`
	Description      string    `bun:"description,notnull" json:"description"`
	Region           string    `bun:"region,notnull" json:"region"`
	DurationDays     int       `bun:"duration_days,notnull" json:"duration_days"`
	Price            float64   `bun:"price,notnull" json:"price"`
	DiscountPercent  float64   `bun:"discount_percent" json:"discount_percent"`
	MaxParticipants  int       `bun:"max_participants,notnull" json:"max_participants"`
	DifficultyLevel  string    `bun:"difficulty_level,notnull" json:"difficulty_level"`
	IncludedServices []string  `bun:"included_services" json:"included_services"`
	MainImage        string    `bun:"main_image,nullzero" json:"main_image,omitempty"`
	IsActive         bool      `bun:"is_active" json:"is_active"`
	CreatedAt        time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

type TourDay struct {
	bun.BaseModel `bun:"table:tour_days"`

	ID             string    `bun:"id,pk" json:"id"`
	TourID         string    `bun:"tour_id,notnull" json:"tour_id"`
	DayNumber      int       `bun:"day_number,notnull" json:"day_number"`
	Accommodation  string    `bun:"accommodation,nullzero" json:"accommodation,omitempty"`
	AutoDistanceKm float64   `bun:"auto_distance_km,nullzero" json:"auto_distance_km,omitempty"`
	WalkDistanceKm float64   `bun:"walk_distance_km,nullzero" json:"walk_distance_km,omitempty"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

type Activity struct {
	bun.BaseModel `bun:"table:activities"`

	ID          string    `bun:"id,pk" json:"id"`
	TourDayID   string    `bun:"tour_day_id,notnull" json:"tour_day_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description,notnull" json:"description"`
	Type        string    `bun:"type,notnull" json:"type"`
	TimeStart   string    `bun:"time_start,nullzero" json:"time_start,omitempty"`
	TimeEnd     string    `bun:"time_end,nullzero" json:"time_end,omitempty"`
	Price       float64   `bun:"price,nullzero" json:"price,omitempty"`
	OrderNumber int       `bun:"order_number,notnull" json:"order_number"`
	IsIncluded  bool      `bun:"is_included" json:"is_included"`
	Image       string    `bun:"image,nullzero" json:"image,omitempty"`
	ImageURL    string    `bun:"image_url,nullzero" json:"image_url,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// DisplayImage returns the reference used for rendering. An uploaded storage
// reference wins over an external URL when both are set.
func (a *Activity) DisplayImage() string {
	if a.Image != "" {
		return a.Image
	}
	return a.ImageURL
}

// ---------------- AGGREGATE SHAPES ----------------

// ActivityInput is one activity inside a full-form tour submit. A present ID
// updates the existing row, an empty ID creates a new one.
type ActivityInput struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Type        string   `json:"type" validate:"required,oneof=transfer meal excursion rest evening_event"`
	TimeStart   string   `json:"time_start,omitempty"`
	TimeEnd     string   `json:"time_end,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	OrderNumber int      `json:"order_number" validate:"gte=1"`
	IsIncluded  bool     `json:"is_included"`
	Image       string   `json:"image,omitempty"`
}

type TourDayInput struct {
	ID             string          `json:"id,omitempty"`
	DayNumber      int             `json:"day_number" validate:"gte=1"`
	Accommodation  string          `json:"accommodation,omitempty"`
	AutoDistanceKm *float64        `json:"auto_distance_km,omitempty" validate:"omitempty,gte=0"`
	WalkDistanceKm *float64        `json:"walk_distance_km,omitempty" validate:"omitempty,gte=0"`
	Activities     []ActivityInput `json:"activities" validate:"dive"`
}

// TourInput is the payload for creating a tour or replacing it wholesale on a
// full-form submit. Days may be nil, meaning "leave nested records untouched".
type TourInput struct {
	Title            string         `json:"title" validate:"required,max=200"`
	Description      string         `json:"description" validate:"required,min=10,max=2000"`
	Region           string         `json:"region" validate:"required,max=100"`
	DurationDays     int            `json:"duration_days" validate:"gte=1,lte=30"`
	Price            float64        `json:"price" validate:"gte=0,lte=1000000"`
	DiscountPercent  float64        `json:"discount_percent" validate:"gte=0,lte=100"`
	MaxParticipants  int            `json:"max_participants" validate:"gte=1,lte=100"`
	DifficultyLevel  string         `json:"difficulty_level" validate:"required,oneof=easy medium hard"`
	IncludedServices []string       `json:"included_services"`
	MainImage        string         `json:"main_image,omitempty"`
	IsActive         *bool          `json:"is_active,omitempty"`
	Days             []TourDayInput `json:"days,omitempty" validate:"omitempty,dive"`
}

// TourPatch is the autosave delta: only non-nil fields are written.
type TourPatch struct {
	Title            *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description      *string   `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	Region           *string   `json:"region,omitempty" validate:"omitempty,min=1,max=100"`
	DurationDays     *int      `json:"duration_days,omitempty" validate:"omitempty,gte=1,lte=30"`
	Price            *float64  `json:"price,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	DiscountPercent  *float64  `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaxParticipants  *int      `json:"max_participants,omitempty" validate:"omitempty,gte=1,lte=100"`
	DifficultyLevel  *string   `json:"difficulty_level,omitempty" validate:"omitempty,oneof=easy medium hard"`
	IncludedServices *[]string `json:"included_services,omitempty"`
	MainImage        *string   `json:"main_image,omitempty"`
	IsActive         *bool     `json:"is_active,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TourPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Region == nil &&
		p.DurationDays == nil && p.Price == nil && p.DiscountPercent == nil &&
		p.MaxParticipants == nil && p.DifficultyLevel == nil &&
		p.IncludedServices == nil && p.MainImage == nil && p.IsActive == nil
}

// DayWithActivities is one day of a tour with its ordered activities.
type DayWithActivities struct {
	TourDay
	Activities []Activity `json:"activities"`
}

// TourDetails is the full aggregate returned to the editing form.
type TourDetails struct {
	Tour
	OriginalPrice float64             `json:"original_price,omitempty"`
	Days          []DayWithActivities `json:"days"`
}

type TourFilter struct {
	OnlyActive bool
	Region     string
}
