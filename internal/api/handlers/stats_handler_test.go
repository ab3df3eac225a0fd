package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("all is unbounded", func(t *testing.T) {
		for _, period := range []string{"", "all"} {
			start, end, err := periodRange(now, period)
			require.NoError(t, err)
			assert.Nil(t, start)
			assert.Nil(t, end)
		}
	})

	t.Run("this_month", func(t *testing.T) {
		start, end, err := periodRange(now, "this_month")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *start)
		assert.Equal(t, now, *end)
	})

	t.Run("last_month", func(t *testing.T) {
		start, end, err := periodRange(now, "last_month")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *start)
		assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), *end)
	})

	t.Run("last_month across a year boundary", func(t *testing.T) {
		january := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
		start, end, err := periodRange(january, "last_month")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), *start)
		assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), *end)
	})

	t.Run("7d", func(t *testing.T) {
		start, end, err := periodRange(now, "7d")
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -7), *start)
		assert.Equal(t, now, *end)
	})

	t.Run("30d", func(t *testing.T) {
		start, end, err := periodRange(now, "30d")
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -30), *start)
		assert.Equal(t, now, *end)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, _, err := periodRange(now, "yesterday")
		assert.Error(t, err)
	})
}

func TestStatsCacheKeyDistinguishesRanges(t *testing.T) {
	now := time.Now()
	week := now.AddDate(0, 0, -7)
	month := now.AddDate(0, 0, -30)

	k1 := statsCacheKey("7d", &week, &now)
	k2 := statsCacheKey("30d", &month, &now)
	k3 := statsCacheKey("all", nil, nil)

	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Equal(t, k1, statsCacheKey("7d", &week, &now))
}
