package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository on the given connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.conn(ctx).Create(category).Error
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.conn(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	query := r.conn(ctx).Model(&models.Category{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Category
	err := query.Order("sort_order ASC").Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	res := r.conn(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.conn(ctx).Delete(&models.Category{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) CategoryNameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.conn(ctx).Model(&models.Category{}).Where("lower(name) = lower(?)", strings.TrimSpace(name))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *repository) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&models.Category{}).Count(&count).Error
	return count, err
}

func (r *repository) CreateItem(ctx context.Context, item *models.Item) error {
	return r.conn(ctx).Create(item).Error
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, categoryID uuid.UUID, onlyActive bool) ([]models.Item, error) {
	query := r.conn(ctx).Model(&models.Item{}).Where("category_id = ?", categoryID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Item
	err := query.Order("sort_order ASC").Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	res := r.conn(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.conn(ctx).Delete(&models.Item{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) ItemNameExists(ctx context.Context, categoryID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.conn(ctx).Model(&models.Item{}).
		Where("category_id = ? AND lower(name) = lower(?)", categoryID, strings.TrimSpace(name))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *repository) CreatePrice(ctx context.Context, price *models.ItemPrice) error {
	return r.conn(ctx).Create(price).Error
}

func (r *repository) FindPrice(ctx context.Context, id uuid.UUID) (*models.ItemPrice, error) {
	var price models.ItemPrice
	if err := r.conn(ctx).First(&price, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repository) ListPrices(ctx context.Context, itemID uuid.UUID) ([]models.ItemPrice, error) {
	var rows []models.ItemPrice
	err := r.conn(ctx).Where("item_id = ?", itemID).
		Order("price ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdatePrice(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	res := r.conn(ctx).Model(&models.ItemPrice{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeletePrice(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.conn(ctx).Delete(&models.ItemPrice{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) ClearDefaultPrices(ctx context.Context, itemID uuid.UUID, exceptID uuid.UUID) error {
	return r.conn(ctx).Model(&models.ItemPrice{}).
		Where("item_id = ? AND id <> ? AND is_default = ?", itemID, exceptID, true).
		Update("is_default", false).Error
}

func (r *repository) FindSelection(ctx context.Context, priceID uuid.UUID) (*SelectionRow, error) {
	var rows []SelectionRow
	err := r.conn(ctx).Raw(`
SELECT p.id AS price_id,
       i.id AS item_id,
       i.name AS item_name,
       i.is_active AS item_active,
       c.name AS category_name,
       c.is_active AS category_active,
       p.option_name AS option_name,
       p.price AS price
FROM item_prices p
JOIN items i ON i.id = p.item_id
JOIN categories c ON c.id = i.category_id
WHERE p.id = ?`, priceID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
