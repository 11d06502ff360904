package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeepos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

func TestMenuSeedsEmptyCatalogOnce(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)

	res, err := Menu(ctx, client, DefaultMenu, logger.Nop())
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, 5, res.Categories)
	require.Equal(t, 36, res.Items)
	require.Equal(t, 42, res.Prices)

	var defaults int64
	require.NoError(t, client.DB().Model(&models.ItemPrice{}).Where("is_default = ?", true).Count(&defaults).Error)
	require.EqualValues(t, res.Items, defaults, "every item gets exactly one default price")

	again, err := Menu(ctx, client, DefaultMenu, nil)
	require.NoError(t, err)
	require.True(t, again.Skipped)

	var categories int64
	require.NoError(t, client.DB().Model(&models.Category{}).Count(&categories).Error)
	require.EqualValues(t, 5, categories)
}

func TestMenuRollsBackOnBadPrice(t *testing.T) {
	client := dbtest.Open(t)
	menu := []MenuCategory{{Name: "Coffee", Items: []MenuItem{{Name: "Latte", Prices: []string{"abc"}}}}}

	_, err := Menu(context.Background(), client, menu, nil)
	require.Error(t, err)

	var categories int64
	require.NoError(t, client.DB().Model(&models.Category{}).Count(&categories).Error)
	require.Zero(t, categories)
}
