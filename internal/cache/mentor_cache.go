package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mentormatch/mentormatch-api/internal/models"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/retry"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// MentorDataSource defines the interface for mentor data fetching
type MentorDataSource interface {
	List(ctx context.Context, filter models.MentorListFilter) ([]*models.MentorProfile, error)
	GetByID(ctx context.Context, id string) (*models.MentorProfile, error)
}

const (
	mentorKeyPrefix  = "mentor:id:"
	allMentorsKey    = "mentor:all"
	cacheCheckPeriod = 10 * time.Second
)

// MentorCache keeps the browse list in memory. Each mentor is stored under
// its id with no expiration; the ordered id list carries the TTL.
type MentorCache struct {
	cache       *gocache.Cache
	dataSource  MentorDataSource
	retryConfig retry.Config
	mu          sync.RWMutex
	refreshing  bool
	ready       bool
	ttl         time.Duration
	lastRefresh time.Time
}

// NewMentorCache creates a new mentor cache
func NewMentorCache(dataSource MentorDataSource, ttlSeconds int) *MentorCache {
	return &MentorCache{
		cache:       gocache.New(gocache.NoExpiration, cacheCheckPeriod),
		dataSource:  dataSource,
		retryConfig: retry.DatabaseConfig(),
		ttl:         time.Duration(ttlSeconds) * time.Second,
	}
}

// Initialize performs the initial population, blocking until it succeeds or
// retries are exhausted. Call it before serving requests.
func (mc *MentorCache) Initialize(ctx context.Context) error {
	logger.Info("Initializing mentor cache...")
	startTime := time.Now()

	err := retry.Do(ctx, mc.retryConfig, "mentor_cache_init", func() error {
		return mc.refresh(ctx)
	})
	if err != nil {
		logger.Error("Failed to initialize mentor cache", zap.Error(err))
		return err
	}

	mc.mu.Lock()
	mc.ready = true
	mc.mu.Unlock()

	logger.Info("Mentor cache initialized successfully",
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

// Start refreshes the cache every TTL until ctx is done
func (mc *MentorCache) Start(ctx context.Context) {
	if mc.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(mc.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := mc.refreshInBackground(ctx); err != nil {
					logger.Error("Scheduled cache refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

// IsReady returns true if the cache has been successfully initialized
func (mc *MentorCache) IsReady() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.ready
}

// LastRefresh returns when the cache was last populated
func (mc *MentorCache) LastRefresh() time.Time {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.lastRefresh
}

// GetByID returns a cached mentor without touching the data source
func (mc *MentorCache) GetByID(id string) (*models.MentorProfile, error) {
	if !mc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	data, found := mc.cache.Get(mentorKeyPrefix + id)
	if !found {
		metrics.CacheMisses.WithLabelValues("mentor_by_id").Inc()
		return nil, apperrors.NotFoundError("mentor")
	}

	mentor, ok := data.(*models.MentorProfile)
	if !ok {
		logger.Error("Invalid cache data type", zap.String("mentor_id", id))
		mc.cache.Delete(mentorKeyPrefix + id)
		return nil, fmt.Errorf("invalid cache data")
	}

	metrics.CacheHits.WithLabelValues("mentor_by_id").Inc()
	return mentor, nil
}

// Get returns all cached mentors in browse order. An expired list returns
// empty rather than blocking on the data source.
func (mc *MentorCache) Get() ([]*models.MentorProfile, error) {
	if !mc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	idsData, found := mc.cache.Get(allMentorsKey)
	if !found {
		metrics.CacheMisses.WithLabelValues("mentor_all").Inc()
		logger.Warn("All mentors list not in cache (expired), returning empty")
		return []*models.MentorProfile{}, nil
	}
	ids, ok := idsData.([]string)
	if !ok {
		logger.Error("Invalid cache data type for all mentors list")
		return []*models.MentorProfile{}, nil
	}

	metrics.CacheHits.WithLabelValues("mentor_all").Inc()

	mentors := make([]*models.MentorProfile, 0, len(ids))
	for _, id := range ids {
		if data, ok := mc.cache.Get(mentorKeyPrefix + id); ok {
			if m, ok := data.(*models.MentorProfile); ok {
				mentors = append(mentors, m)
			}
		}
	}
	return mentors, nil
}

// UpdateSingleMentor reloads one mentor, e.g. after registration or a
// schedule change, and puts it at the front of the list if it is new
func (mc *MentorCache) UpdateSingleMentor(ctx context.Context, id string) error {
	if !mc.IsReady() {
		return fmt.Errorf("cache not initialized")
	}

	mentor, err := mc.dataSource.GetByID(ctx, id)
	if err != nil {
		logger.Error("Failed to fetch mentor from data source",
			zap.String("mentor_id", id),
			zap.Error(err))
		return err
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Set(mentorKeyPrefix+id, mentor, gocache.NoExpiration)

	if idsData, found := mc.cache.Get(allMentorsKey); found {
		ids, _ := idsData.([]string)
		present := false
		for _, existing := range ids {
			if existing == id {
				present = true
				break
			}
		}
		if !present {
			mc.cache.Set(allMentorsKey, append([]string{id}, ids...), mc.ttl)
			metrics.CacheSize.WithLabelValues("mentors").Inc()
		}
	}

	logger.Info("Single mentor updated in cache", zap.String("mentor_id", id))
	return nil
}

// RemoveMentor drops a mentor from the cache
func (mc *MentorCache) RemoveMentor(id string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Delete(mentorKeyPrefix + id)

	idsData, found := mc.cache.Get(allMentorsKey)
	if !found {
		return
	}
	ids, _ := idsData.([]string)
	kept := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	mc.cache.Set(allMentorsKey, kept, mc.ttl)
	metrics.CacheSize.WithLabelValues("mentors").Set(float64(len(kept)))
}

// ForceRefresh triggers a background refresh and returns the current data
func (mc *MentorCache) ForceRefresh(ctx context.Context) ([]*models.MentorProfile, error) {
	go func() {
		if err := mc.refreshInBackground(context.WithoutCancel(ctx)); err != nil {
			logger.Error("Background refresh failed", zap.Error(err))
		}
	}()
	return mc.Get()
}

func (mc *MentorCache) refreshInBackground(ctx context.Context) error {
	mc.mu.Lock()
	if mc.refreshing {
		mc.mu.Unlock()
		logger.Debug("Refresh already in progress, skipping")
		return nil
	}
	mc.refreshing = true
	mc.mu.Unlock()

	defer func() {
		mc.mu.Lock()
		mc.refreshing = false
		mc.mu.Unlock()
	}()

	return mc.refresh(ctx)
}

func (mc *MentorCache) refresh(ctx context.Context) error {
	startTime := time.Now()

	mentors, err := mc.dataSource.List(ctx, models.MentorListFilter{})
	if err != nil {
		return fmt.Errorf("failed to fetch mentors: %w", err)
	}

	mc.populate(mentors)

	logger.Info("Mentor cache refreshed",
		zap.Int("count", len(mentors)),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

func (mc *MentorCache) populate(mentors []*models.MentorProfile) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	ids := make([]string, 0, len(mentors))
	for _, mentor := range mentors {
		mc.cache.Set(mentorKeyPrefix+mentor.ID, mentor, gocache.NoExpiration)
		ids = append(ids, mentor.ID)
	}
	mc.cache.Set(allMentorsKey, ids, mc.ttl)
	mc.lastRefresh = time.Now()

	metrics.CacheSize.WithLabelValues("mentors").Set(float64(len(mentors)))
}
