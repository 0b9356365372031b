package services

import (
	"context"
	"testing"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsReadsAreCached(t *testing.T) {
	clock := &fakeClock{now: date(2025, time.June, 1)}
	repo := newMockSettingRepo(map[string]string{"interest.tier1.rate": "0.03"})
	svc := NewSettingsService(repo, clock)
	ctx := context.Background()

	got := svc.GetDecimal(ctx, "interest.tier1.rate", decimal.Zero)
	assert.True(t, got.Equal(decimal.RequireFromString("0.03")))
	assert.Equal(t, 1, repo.findCalls["interest.tier1.rate"])

	// Second read within the TTL never hits the repository
	svc.GetDecimal(ctx, "interest.tier1.rate", decimal.Zero)
	assert.Equal(t, 1, repo.findCalls["interest.tier1.rate"])

	// Past the TTL the value is re-fetched
	clock.now = clock.now.Add(31 * time.Second)
	svc.GetDecimal(ctx, "interest.tier1.rate", decimal.Zero)
	assert.Equal(t, 2, repo.findCalls["interest.tier1.rate"])
}

func TestSettingsMissesAreCachedToo(t *testing.T) {
	clock := &fakeClock{now: date(2025, time.June, 1)}
	repo := newMockSettingRepo(nil)
	svc := NewSettingsService(repo, clock)
	ctx := context.Background()

	assert.Equal(t, 7, svc.GetInt(ctx, "missing.key", 7))
	assert.Equal(t, 7, svc.GetInt(ctx, "missing.key", 7))
	assert.Equal(t, 1, repo.findCalls["missing.key"])
}

func TestSettingsUpdateInvalidatesImmediately(t *testing.T) {
	clock := &fakeClock{now: date(2025, time.June, 1)}
	repo := newMockSettingRepo(map[string]string{"termination.early_rate": "0.10"})
	svc := NewSettingsService(repo, clock)
	ctx := context.Background()

	first := svc.GetDecimal(ctx, "termination.early_rate", decimal.Zero)
	assert.True(t, first.Equal(decimal.RequireFromString("0.10")))

	err := svc.Update(ctx, &models.Setting{Key: "termination.early_rate", Value: "0.25"})
	require.NoError(t, err)

	// The write invalidated the cache; the fresh value is visible at once
	second := svc.GetDecimal(ctx, "termination.early_rate", decimal.Zero)
	assert.True(t, second.Equal(decimal.RequireFromString("0.25")), "got %s", second)
}

func TestSettingsFallBackToDefaultOnBadValue(t *testing.T) {
	clock := &fakeClock{now: date(2025, time.June, 1)}
	repo := newMockSettingRepo(map[string]string{
		"interest.tier1.min_days": "soon",
		"interest.tier1.rate":     "a lot",
	})
	svc := NewSettingsService(repo, clock)
	ctx := context.Background()

	assert.Equal(t, 10, svc.GetInt(ctx, "interest.tier1.min_days", 10))
	fallback := decimal.RequireFromString("0.02")
	assert.True(t, svc.GetDecimal(ctx, "interest.tier1.rate", fallback).Equal(fallback))
}

func TestEnabledMinimumMonthOptions(t *testing.T) {
	clock := &fakeClock{now: date(2025, time.June, 1)}
	repo := newMockSettingRepo(nil)
	repo.settings = []models.Setting{
		{Key: "minimum_months.12", Value: "true", Category: models.SettingCategoryMinimumMonths},
		{Key: "minimum_months.6", Value: "true", Category: models.SettingCategoryMinimumMonths},
		{Key: "minimum_months.24", Value: "false", Category: models.SettingCategoryMinimumMonths},
		{Key: "minimum_months.banana", Value: "true", Category: models.SettingCategoryMinimumMonths},
		{Key: "interest.tier1.rate", Value: "0.02", Category: models.SettingCategoryInterestTiers},
	}
	svc := NewSettingsService(repo, clock)

	options, err := svc.EnabledMinimumMonthOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{6, 12}, options)
}
