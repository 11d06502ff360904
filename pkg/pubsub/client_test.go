package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceName(t *testing.T) {
	require.Equal(t, "projects/cafe/topics/orders", resourceName("cafe", "topics", "orders"))
	require.Equal(t, "projects/other/topics/orders", resourceName("cafe", "topics", "projects/other/topics/orders"))
	require.Equal(t, "", resourceName("cafe", "topics", " "))
	require.Equal(t, "", resourceName("", "topics", "orders"))
}

func TestCleanNames(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, cleanNames([]string{" a ", "", "b"}))
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	require.Nil(t, c.Publisher("orders"))
	require.NoError(t, c.Close())
	require.Error(t, c.Ping(context.Background()))
}
