package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/coffeepos-backend/pkg/db"
	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

const (
	maxNameLen        = 120
	maxDescriptionLen = 1000
	maxOptionNameLen  = 60
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes menu management and the read paths used to build orders.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	ListCategories(ctx context.Context, onlyActive bool) ([]CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CategoryNameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, categoryID uuid.UUID, onlyActive bool) ([]ItemDTO, error)
	UpdateItem(ctx context.Context, id uuid.UUID, patch ItemPatch) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ItemNameExists(ctx context.Context, categoryID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	CreatePrice(ctx context.Context, input CreatePriceInput) (*PriceDTO, error)
	GetPrice(ctx context.Context, id uuid.UUID) (*PriceDTO, error)
	ListPrices(ctx context.Context, itemID uuid.UUID) ([]PriceDTO, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, patch PricePatch) (*PriceDTO, error)
	DeletePrice(ctx context.Context, id uuid.UUID) error

	ResolveSelection(ctx context.Context, priceID uuid.UUID) (*PriceSelection, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the catalog service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, logg: logg, now: time.Now}, nil
}

var errNothingToUpdate = pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")

func normalizeName(field, raw string, maxLen int) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s is required", field)
	}
	if len([]rune(name)) > maxLen {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be at most %d characters", field, maxLen)
	}
	return name, nil
}

func normalizeOptional(field string, raw *string, maxLen int) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	if len([]rune(value)) > maxLen {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be at most %d characters", field, maxLen)
	}
	return &value, nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if price.Exponent() < -2 && !price.Equal(price.Round(2)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price supports at most two decimal places")
	}
	return nil
}

func validateSortOrder(order int) error {
	if order < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sort_order must not be negative")
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// storeErr maps repository failures onto the public error taxonomy.
func storeErr(err error, op, what string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if isNotFound(err) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", what)
	}
	if dbpkg.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, what+" with this name already exists")
	}
	if dbpkg.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "parent of "+what+" not found")
	}
	if dbpkg.IsCheckViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, what+" failed validation")
	}
	return pkgerrors.Store(err, op)
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name, err := normalizeName("name", input.Name, maxNameLen)
	if err != nil {
		return nil, err
	}
	if err := validateSortOrder(input.SortOrder); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	category := models.Category{
		ID:        uuid.New(),
		Name:      name,
		IsActive:  boolOr(input.IsActive, true),
		SortOrder: input.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateCategory(ctx, &category); err != nil {
		return nil, storeErr(err, "create category", "category")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"category_id": category.ID, "name": name}), "category created")
	dto := categoryFromModel(category)
	return &dto, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, storeErr(err, "load category", "category")
	}
	dto := categoryFromModel(*category)
	return &dto, nil
}

func (s *service) ListCategories(ctx context.Context, onlyActive bool) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx, onlyActive)
	if err != nil {
		return nil, storeErr(err, "list categories", "category")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryFromModel(row))
	}
	return out, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*CategoryDTO, error) {
	if patch.empty() {
		return nil, errNothingToUpdate
	}
	updates := map[string]any{"updated_at": s.now().UTC()}
	if patch.Name != nil {
		name, err := normalizeName("name", *patch.Name, maxNameLen)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.SortOrder != nil {
		if err := validateSortOrder(*patch.SortOrder); err != nil {
			return nil, err
		}
		updates["sort_order"] = *patch.SortOrder
	}

	affected, err := s.repo.UpdateCategory(ctx, id, updates)
	if err != nil {
		return nil, storeErr(err, "update category", "category")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return s.GetCategory(ctx, id)
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return storeErr(err, "delete category", "category")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "category_id", id), "category deleted with its items")
	return nil
}

func (s *service) CategoryNameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, nil
	}
	exists, err := s.repo.CategoryNameExists(ctx, name, excludeID)
	if err != nil {
		return false, storeErr(err, "check category name", "category")
	}
	return exists, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	name, err := normalizeName("name", input.Name, maxNameLen)
	if err != nil {
		return nil, err
	}
	description, err := normalizeOptional("description", input.Description, maxDescriptionLen)
	if err != nil {
		return nil, err
	}
	if err := validateSortOrder(input.SortOrder); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item := models.Item{
		ID:          uuid.New(),
		CategoryID:  input.CategoryID,
		Name:        name,
		Description: description,
		IsActive:    boolOr(input.IsActive, true),
		SortOrder:   input.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateItem(ctx, &item); err != nil {
		if dbpkg.IsForeignKeyViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, storeErr(err, "create item", "item")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"item_id": item.ID, "category_id": item.CategoryID}), "item created")
	dto := itemFromModel(item)
	return &dto, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, storeErr(err, "load item", "item")
	}
	dto := itemFromModel(*item)
	return &dto, nil
}

func (s *service) ListItems(ctx context.Context, categoryID uuid.UUID, onlyActive bool) ([]ItemDTO, error) {
	rows, err := s.repo.ListItems(ctx, categoryID, onlyActive)
	if err != nil {
		return nil, storeErr(err, "list items", "item")
	}
	out := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, itemFromModel(row))
	}
	return out, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, patch ItemPatch) (*ItemDTO, error) {
	if patch.empty() {
		return nil, errNothingToUpdate
	}
	updates := map[string]any{"updated_at": s.now().UTC()}
	if patch.CategoryID != nil {
		if *patch.CategoryID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
		}
		updates["category_id"] = *patch.CategoryID
	}
	if patch.Name != nil {
		name, err := normalizeName("name", *patch.Name, maxNameLen)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if patch.Description.Valid {
		description, err := normalizeOptional("description", patch.Description.Value, maxDescriptionLen)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.SortOrder != nil {
		if err := validateSortOrder(*patch.SortOrder); err != nil {
			return nil, err
		}
		updates["sort_order"] = *patch.SortOrder
	}

	affected, err := s.repo.UpdateItem(ctx, id, updates)
	if err != nil {
		if dbpkg.IsForeignKeyViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, storeErr(err, "update item", "item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return s.GetItem(ctx, id)
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return storeErr(err, "delete item", "item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

func (s *service) ItemNameExists(ctx context.Context, categoryID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, nil
	}
	exists, err := s.repo.ItemNameExists(ctx, categoryID, name, excludeID)
	if err != nil {
		return false, storeErr(err, "check item name", "item")
	}
	return exists, nil
}

// CreatePrice adds a price option. Marking it default unsets the item's
// previous default in the same transaction.
func (s *service) CreatePrice(ctx context.Context, input CreatePriceInput) (*PriceDTO, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	option, err := normalizeOptional("option_name", input.OptionName, maxOptionNameLen)
	if err != nil {
		return nil, err
	}

	price := models.ItemPrice{
		ID:         uuid.New(),
		ItemID:     input.ItemID,
		OptionName: option,
		Price:      input.Price.Round(2),
		IsDefault:  input.IsDefault,
		CreatedAt:  s.now().UTC(),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreatePrice(ctx, &price); err != nil {
			if dbpkg.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return err
		}
		if price.IsDefault {
			return repo.ClearDefaultPrices(ctx, price.ItemID, price.ID)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "create price", "price")
	}
	dto := priceFromModel(price)
	return &dto, nil
}

func (s *service) GetPrice(ctx context.Context, id uuid.UUID) (*PriceDTO, error) {
	price, err := s.repo.FindPrice(ctx, id)
	if err != nil {
		return nil, storeErr(err, "load price", "price")
	}
	dto := priceFromModel(*price)
	return &dto, nil
}

func (s *service) ListPrices(ctx context.Context, itemID uuid.UUID) ([]PriceDTO, error) {
	rows, err := s.repo.ListPrices(ctx, itemID)
	if err != nil {
		return nil, storeErr(err, "list prices", "price")
	}
	out := make([]PriceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, priceFromModel(row))
	}
	return out, nil
}

func (s *service) UpdatePrice(ctx context.Context, id uuid.UUID, patch PricePatch) (*PriceDTO, error) {
	if patch.empty() {
		return nil, errNothingToUpdate
	}
	updates := map[string]any{}
	if patch.OptionName.Valid {
		option, err := normalizeOptional("option_name", patch.OptionName.Value, maxOptionNameLen)
		if err != nil {
			return nil, err
		}
		updates["option_name"] = option
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		updates["price"] = patch.Price.Round(2)
	}
	if patch.IsDefault != nil {
		updates["is_default"] = *patch.IsDefault
	}

	var updated *models.ItemPrice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.UpdatePrice(ctx, id, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price not found")
		}
		price, err := repo.FindPrice(ctx, id)
		if err != nil {
			return err
		}
		if patch.IsDefault != nil && *patch.IsDefault {
			if err := repo.ClearDefaultPrices(ctx, price.ItemID, price.ID); err != nil {
				return err
			}
		}
		updated = price
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "update price", "price")
	}
	dto := priceFromModel(*updated)
	return &dto, nil
}

func (s *service) DeletePrice(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.DeletePrice(ctx, id)
	if err != nil {
		return storeErr(err, "delete price", "price")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "price not found")
	}
	return nil
}

// ResolveSelection loads a price option with the names an order line
// captures. Hidden items or categories cannot be ordered.
func (s *service) ResolveSelection(ctx context.Context, priceID uuid.UUID) (*PriceSelection, error) {
	row, err := s.repo.FindSelection(ctx, priceID)
	if err != nil {
		return nil, storeErr(err, "load price option", "price option")
	}
	if !row.ItemActive || !row.CategoryActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is not available for ordering")
	}
	return &PriceSelection{
		PriceID:      row.PriceID,
		ItemID:       row.ItemID,
		ItemName:     row.ItemName,
		CategoryName: row.CategoryName,
		OptionName:   row.OptionName,
		Price:        row.Price,
	}, nil
}
