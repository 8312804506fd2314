package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CoderAK123/smart-clinic-management/pkg/errors"
)

func setupTestCache(t *testing.T) (*AvailabilityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	c := NewAvailabilityCache(client, 5*time.Minute)
	return c, mr
}

func TestAvailabilityCache_SetGet(t *testing.T) {
	c, _ := setupTestCache(t)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slots := []string{"09:00", "10:00", "14:00"}

	require.NoError(t, c.Set(context.Background(), "d-1", date, slots))

	got, err := c.Get(context.Background(), "d-1", date)
	require.NoError(t, err)
	assert.Equal(t, slots, got)
}

func TestAvailabilityCache_Get_Miss(t *testing.T) {
	c, _ := setupTestCache(t)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := c.Get(context.Background(), "d-1", date)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAvailabilityCache_Invalidate(t *testing.T) {
	c, _ := setupTestCache(t)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(context.Background(), "d-1", date, []string{"09:00"}))

	require.NoError(t, c.Invalidate(context.Background(), "d-1", date))

	_, err := c.Get(context.Background(), "d-1", date)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAvailabilityCache_InvalidateDoctor_DropsAllDates(t *testing.T) {
	c, _ := setupTestCache(t)

	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(context.Background(), "d-1", day1, []string{"09:00"}))
	require.NoError(t, c.Set(context.Background(), "d-1", day2, []string{"10:00"}))
	require.NoError(t, c.Set(context.Background(), "d-2", day1, []string{"11:00"}))

	require.NoError(t, c.InvalidateDoctor(context.Background(), "d-1"))

	_, err := c.Get(context.Background(), "d-1", day1)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	_, err = c.Get(context.Background(), "d-1", day2)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	// Other doctors keep their cached dates.
	got, err := c.Get(context.Background(), "d-2", day1)
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00"}, got)
}

func TestAvailabilityCache_EntriesExpire(t *testing.T) {
	c, mr := setupTestCache(t)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(context.Background(), "d-1", date, []string{"09:00"}))

	mr.FastForward(6 * time.Minute)

	_, err := c.Get(context.Background(), "d-1", date)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
