package instance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIDPrefersEnv(t *testing.T) {
	t.Setenv("COFFEEPOS_WORKER_ID", "cron-7")
	require.Equal(t, "cron-7", GetID())
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("COFFEEPOS_WORKER_ID", "")
	require.NotEmpty(t, GetID())
}
