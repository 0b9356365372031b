package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"github.com/jesusemanuel87/inmobiliaria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// settingsCacheTTL bounds how stale a cached value can get when a
// setting is changed outside this process.
const settingsCacheTTL = 30 * time.Second

type cachedSetting struct {
	value     string
	found     bool
	fetchedAt time.Time
}

// SettingsService provides typed access to configuration entries with
// caller-supplied defaults. Reads go through a short-TTL cache; writes
// invalidate the cache synchronously before returning.
type SettingsService struct {
	repo  repository.SettingRepository
	clock Clock

	mu    sync.RWMutex
	cache map[string]cachedSetting
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo repository.SettingRepository, clock Clock) *SettingsService {
	return &SettingsService{
		repo:  repo,
		clock: clock,
		cache: make(map[string]cachedSetting),
	}
}

func (s *SettingsService) lookup(ctx context.Context, key string) (string, bool) {
	now := s.clock.Now()

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && now.Sub(entry.fetchedAt) < settingsCacheTTL {
		return entry.value, entry.found
	}

	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		// Missing or unreadable keys fall back to the caller's default
		s.mu.Lock()
		s.cache[key] = cachedSetting{found: false, fetchedAt: now}
		s.mu.Unlock()
		return "", false
	}

	s.mu.Lock()
	s.cache[key] = cachedSetting{value: setting.Value, found: true, fetchedAt: now}
	s.mu.Unlock()
	return setting.Value, true
}

// GetString returns the setting value or the default when absent
func (s *SettingsService) GetString(ctx context.Context, key, def string) string {
	if value, ok := s.lookup(ctx, key); ok {
		return value
	}
	return def
}

// GetInt returns the setting parsed as int or the default
func (s *SettingsService) GetInt(ctx context.Context, key string, def int) int {
	value, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logger.Warn("setting is not an integer", "key", key, "value", value)
		return def
	}
	return parsed
}

// GetDecimal returns the setting parsed as decimal or the default
func (s *SettingsService) GetDecimal(ctx context.Context, key string, def decimal.Decimal) decimal.Decimal {
	value, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		logger.Warn("setting is not a decimal", "key", key, "value", value)
		return def
	}
	return parsed
}

// GetBool returns the setting parsed as bool or the default
func (s *SettingsService) GetBool(ctx context.Context, key string, def bool) bool {
	value, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		logger.Warn("setting is not a boolean", "key", key, "value", value)
		return def
	}
	return parsed
}

// EnabledMinimumMonthOptions returns the sorted list of lease durations
// (in months) the agency currently offers. Each option is a setting in
// the minimum_months category whose key names the month count and whose
// value is a truthy flag.
func (s *SettingsService) EnabledMinimumMonthOptions(ctx context.Context) ([]int, error) {
	settings, err := s.repo.FindByCategory(ctx, models.SettingCategoryMinimumMonths)
	if err != nil {
		return nil, err
	}

	var options []int
	for _, setting := range settings {
		enabled, err := strconv.ParseBool(strings.TrimSpace(setting.Value))
		if err != nil || !enabled {
			continue
		}
		// Keys look like "minimum_months.12"
		parts := strings.Split(setting.Key, ".")
		months, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			logger.Warn("minimum-months setting has a non-numeric key", "key", setting.Key)
			continue
		}
		options = append(options, months)
	}
	sort.Ints(options)
	return options, nil
}

// FindAll returns every configuration entry
func (s *SettingsService) FindAll(ctx context.Context) ([]models.Setting, error) {
	return s.repo.FindAll(ctx)
}

// FindByCategory returns the configuration entries in a category
func (s *SettingsService) FindByCategory(ctx context.Context, category string) ([]models.Setting, error) {
	return s.repo.FindByCategory(ctx, category)
}

// Update upserts a setting and invalidates its cache entry before
// returning, so readers never observe the old value after the write.
func (s *SettingsService) Update(ctx context.Context, setting *models.Setting) error {
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return err
	}
	s.Invalidate(setting.Key)
	return nil
}

// Invalidate drops a key from the cache
func (s *SettingsService) Invalidate(key string) {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}

// InvalidateAll drops the whole cache
func (s *SettingsService) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]cachedSetting)
	s.mu.Unlock()
}
