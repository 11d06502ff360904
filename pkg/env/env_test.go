package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Setenv("COFFEEPOS_TEST_FORMAT", " console ")
	require.Equal(t, "console", Get("COFFEEPOS_TEST_FORMAT", "json"))

	t.Setenv("COFFEEPOS_TEST_FORMAT", "   ")
	require.Equal(t, "json", Get("COFFEEPOS_TEST_FORMAT", "json"))
}
