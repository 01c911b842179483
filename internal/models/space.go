package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SpaceType struct {
	bun.BaseModel `bun:"table:space_types"`

	ID          string    `bun:"id,pk" json:"id"`
	TypeID      int       `bun:"type_id,notnull" json:"type_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Slug        string    `bun:"slug,notnull" json:"slug"`
	DisplayName string    `bun:"display_name,nullzero" json:"display_name,omitempty"`
	OrderIndex  int       `bun:"order_index,notnull" json:"order_index"`
	IsActive    bool      `bun:"is_active" json:"is_active"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

type Space struct {
	bun.BaseModel `bun:"table:spaces"`

	ID            string    `bun:"id,pk" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   string    `bun:"description,notnull" json:"description"`
	Capacity      int       `bun:"capacity,notnull" json:"capacity"`
	AreaSqm       float64   `bun:"area_sqm,notnull" json:"area_sqm"`
	Floor         int       `bun:"floor,nullzero" json:"floor,omitempty"`
	Amenities     []string  `bun:"amenities" json:"amenities"`
	RoomType      string    `bun:"room_type,notnull" json:"room_type"`
	RoomTypeID    string    `bun:"room_type_id,nullzero" json:"room_type_id,omitempty"`
	PricePerNight float64   `bun:"price_per_night,nullzero" json:"price_per_night,omitempty"`
	DiscountPercent float64 `bun:"discount_percent,nullzero" json:"discount_percent,omitempty"`
	HourlyRate    float64   `bun:"hourly_rate,nullzero" json:"hourly_rate,omitempty"`
	Images        []string  `bun:"images" json:"images"`
	IsAvailable   bool      `bun:"is_available" json:"is_available"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// SpaceWithType pairs a space with its resolved category, if any.
type SpaceWithType struct {
	Space
	SpaceType *SpaceType `json:"space_type,omitempty"`
}

type SpaceInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Description   string   `json:"description" validate:"required"`
	Capacity      int      `json:"capacity" validate:"gte=1"`
	AreaSqm       float64  `json:"area_sqm" validate:"gt=0"`
	Floor         *int     `json:"floor,omitempty"`
	Amenities     []string `json:"amenities"`
	RoomType      string   `json:"room_type" validate:"required"`
	RoomTypeID    string   `json:"room_type_id,omitempty"`
	PricePerNight *float64 `json:"price_per_night,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	HourlyRate    *float64 `json:"hourly_rate,omitempty" validate:"omitempty,gte=0"`
	Images        []string `json:"images,omitempty"`
	IsAvailable   *bool    `json:"is_available,omitempty"`
}

type SpacePatch struct {
	Name          *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Capacity      *int      `json:"capacity,omitempty" validate:"omitempty,gte=1"`
	AreaSqm       *float64  `json:"area_sqm,omitempty" validate:"omitempty,gt=0"`
	Floor         *int      `json:"floor,omitempty"`
	Amenities     *[]string `json:"amenities,omitempty"`
	RoomType      *string   `json:"room_type,omitempty" validate:"omitempty,min=1"`
	RoomTypeID    *string   `json:"room_type_id,omitempty"`
	PricePerNight *float64  `json:"price_per_night,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	HourlyRate    *float64  `json:"hourly_rate,omitempty" validate:"omitempty,gte=0"`
	Images        *[]string `json:"images,omitempty"`
	IsAvailable   *bool     `json:"is_available,omitempty"`
}

type SpaceTypeInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100"`
	DisplayName string `json:"display_name,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type SpaceTypePatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,min=1,max=100"`
	DisplayName *string `json:"display_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// OrderUpdate is one entry of a batch reorder write.
type OrderUpdate struct {
	ID         string `json:"id" validate:"required"`
	OrderIndex int    `json:"order_index" validate:"gte=1"`
}

type SpaceFilter struct {
	OnlyAvailable bool
	RoomType      string
}
