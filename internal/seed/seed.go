// Package seed loads the default menu into an empty catalog.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Result reports what Menu inserted.
type Result struct {
	Skipped    bool
	Categories int
	Items      int
	Prices     int
}

// Menu inserts menu when the categories table is empty. A non-empty catalog
// is left untouched.
func Menu(ctx context.Context, db txRunner, menu []MenuCategory, logg *logger.Logger) (Result, error) {
	var res Result
	now := time.Now().UTC()

	err := db.WithTx(ctx, func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Category{}).Count(&existing).Error; err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if existing > 0 {
			res.Skipped = true
			return nil
		}

		for catOrder, cat := range menu {
			category := models.Category{
				ID:        uuid.New(),
				Name:      cat.Name,
				IsActive:  true,
				SortOrder: catOrder,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("insert category %q: %w", cat.Name, err)
			}
			res.Categories++

			for itemOrder, entry := range cat.Items {
				item := models.Item{
					ID:         uuid.New(),
					CategoryID: category.ID,
					Name:       entry.Name,
					IsActive:   true,
					SortOrder:  itemOrder,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("insert item %q: %w", entry.Name, err)
				}
				res.Items++

				for i, raw := range entry.Prices {
					amount, err := decimal.NewFromString(raw)
					if err != nil {
						return fmt.Errorf("price %q of %q: %w", raw, entry.Name, err)
					}
					price := models.ItemPrice{
						ID:        uuid.New(),
						ItemID:    item.ID,
						Price:     amount,
						IsDefault: i == 0,
						CreatedAt: now,
					}
					if err := tx.Create(&price).Error; err != nil {
						return fmt.Errorf("insert price for %q: %w", entry.Name, err)
					}
					res.Prices++
				}
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"skipped":    res.Skipped,
			"categories": res.Categories,
			"items":      res.Items,
			"prices":     res.Prices,
		}), "menu seed finished")
	}
	return res, nil
}
