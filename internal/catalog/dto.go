package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

// CategoryDTO is the category payload returned to clients.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemDTO is the item payload returned to clients.
type ItemDTO struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PriceDTO is one price option of an item.
type PriceDTO struct {
	ID         uuid.UUID       `json:"id"`
	ItemID     uuid.UUID       `json:"item_id"`
	OptionName *string         `json:"option_name"`
	Price      decimal.Decimal `json:"price"`
	IsDefault  bool            `json:"is_default"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PriceSelection is a price option resolved together with the names that an
// order line captures by value.
type PriceSelection struct {
	PriceID      uuid.UUID
	ItemID       uuid.UUID
	ItemName     string
	CategoryName string
	OptionName   *string
	Price        decimal.Decimal
}

// CreateCategoryInput holds the values for a new category.
type CreateCategoryInput struct {
	Name      string
	IsActive  *bool
	SortOrder int
}

// CreateItemInput holds the values for a new item.
type CreateItemInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description *string
	IsActive    *bool
	SortOrder   int
}

// CreatePriceInput holds the values for a new price option.
type CreatePriceInput struct {
	ItemID     uuid.UUID
	OptionName *string
	Price      decimal.Decimal
	IsDefault  bool
}

// CategoryPatch lists the fields to change; nil means leave unchanged.
type CategoryPatch struct {
	Name      *string
	IsActive  *bool
	SortOrder *int
}

func (p CategoryPatch) empty() bool {
	return p.Name == nil && p.IsActive == nil && p.SortOrder == nil
}

// ItemPatch lists the fields to change. Description may be cleared with an
// explicit null.
type ItemPatch struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description types.NullableString
	IsActive    *bool
	SortOrder   *int
}

func (p ItemPatch) empty() bool {
	return p.CategoryID == nil && p.Name == nil && !p.Description.Valid && p.IsActive == nil && p.SortOrder == nil
}

// PricePatch lists the fields to change. OptionName may be cleared with an
// explicit null.
type PricePatch struct {
	OptionName types.NullableString
	Price      *decimal.Decimal
	IsDefault  *bool
}

func (p PricePatch) empty() bool {
	return !p.OptionName.Valid && p.Price == nil && p.IsDefault == nil
}

func categoryFromModel(m models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        m.ID,
		Name:      m.Name,
		IsActive:  m.IsActive,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func itemFromModel(m models.Item) ItemDTO {
	return ItemDTO{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		SortOrder:   m.SortOrder,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func priceFromModel(m models.ItemPrice) PriceDTO {
	return PriceDTO{
		ID:         m.ID,
		ItemID:     m.ItemID,
		OptionName: m.OptionName,
		Price:      m.Price,
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt,
	}
}
