package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type memoryCache struct {
	items    map[string][]byte
	getErr   error
	sweepErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	if m.sweepErr != nil {
		return m.sweepErr
	}
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func TestCacheServiceDisabled(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, zap.NewNop(), false)

	require.NoError(t, cache.Set(context.Background(), "k", "v", 0))
	hit, err := cache.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, store.items)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	assert.NoError(t, nilCache.Invalidate(context.Background(), "students:*"))
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCache(), metrics, 0, zap.NewNop(), true)

	var out string
	hit, err := cache.Get(context.Background(), "missing", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(context.Background(), "present", "value", 0))
	hit, err = cache.Get(context.Background(), "present", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", out)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio))
}

func TestCacheServiceGetFailureIsReported(t *testing.T) {
	store := newMemoryCache()
	store.getErr = errors.New("connection refused")
	cache := NewCacheService(store, nil, 0, zap.NewNop(), true)

	hit, err := cache.Get(context.Background(), "students:list", new([]models.Student))
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestStudentServiceServesFromCacheAndInvalidatesOnWrite(t *testing.T) {
	repo := newMockStudentRepo(alice())
	store := newMemoryCache()
	metrics := NewMetricsService()
	cache := NewCacheService(store, metrics, time.Minute, zap.NewNop(), true)
	svc := NewStudentService(repo, NewValidator(), cache, metrics, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls["find"])
	assert.Contains(t, store.items, "students:detail:1")

	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, store.items, "students:list")

	name := "Alicia"
	updated, err := svc.Update(ctx, 1, dto.UpdateStudentRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.NotContains(t, store.items, "students:list")
	assert.Contains(t, store.items, "students:detail:1")

	fetched, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", fetched.Name)
	assert.Equal(t, 1, repo.calls["find"])

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.studentMutations.WithLabelValues("update")))
}

func TestStudentServiceReadsBackWritesWhenSweepFails(t *testing.T) {
	second := alice()
	second.ID = 2
	second.Name = "Bob"
	repo := newMockStudentRepo(alice(), second)
	store := newMemoryCache()
	store.sweepErr = errors.New("redis down")
	cache := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)
	svc := NewStudentService(repo, NewValidator(), cache, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Get(ctx, 2)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)

	name := "Alicia"
	_, err = svc.Update(ctx, 1, dto.UpdateStudentRequest{Name: &name})
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", fetched.Name)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Alicia", listed[0].Name)

	status, err := svc.SetStatus(ctx, 2, dto.SetStudentStatusRequest{Status: models.StudentStatusInactive})
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusInactive, status.Status)

	fetched, err = svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusInactive, fetched.Status)

	created, err := svc.Create(ctx, dto.CreateStudentRequest{Name: "Citra"})
	require.NoError(t, err)
	listed, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, created.ID, listed[2].ID)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveHTTPRequest("GET", "/students", 200, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.ObserveCacheWrite(time.Millisecond)
	metrics.ObserveDBQuery("students_list", time.Millisecond, nil)
	metrics.IncStudentMutation("create")
	assert.NotNil(t, metrics.Handler())
}

func TestMetricsServiceDBQueryOutcome(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveDBQuery("students_detail", time.Millisecond, nil)
	metrics.ObserveDBQuery("students_detail", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(metrics.dbQueryDuration, "db_query_duration_seconds"))
}
