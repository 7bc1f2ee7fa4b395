package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCacheRepo struct{ err error }

func (f failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error { return f.err }

func (f failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return f.err
}

func (f failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error { return f.err }

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	hit, err := nilSvc.Get(context.Background(), cacheKeyTotal, new(int64))
	assert.False(t, hit)
	assert.NoError(t, err)
	assert.NoError(t, nilSvc.Set(context.Background(), cacheKeyTotal, int64(1), 0))
	assert.NoError(t, nilSvc.Invalidate(context.Background(), cachePatternFees))

	disabled := NewCacheService(newMemoryCacheRepo(), nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)

	var total int64
	hit, err := svc.Get(context.Background(), cacheKeyTotal, &total)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), cacheKeyTotal, int64(1750), 0))
	hit, err = svc.Get(context.Background(), cacheKeyTotal, &total)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(1750), total)
}

func TestCacheServiceBackendFailureDoesNotBreakReads(t *testing.T) {
	repo := newMockStudentFeeRepo()
	backend := errors.New("redis: connection refused")
	cache := NewCacheService(failingCacheRepo{err: backend}, nil, time.Minute, zap.NewNop(), true)
	svc := NewStudentFeeService(StudentFeeServiceParams{Repo: repo, Cache: cache, Logger: zap.NewNop()})

	hit, err := cache.Get(context.Background(), cacheKeyTotal, new(int64))
	assert.False(t, hit)
	assert.ErrorIs(t, err, backend)

	_, err = svc.CreateStudent(context.Background(), CreateStudentRequest{RollNo: 1, Name: "Asha", ClassName: "Class 6"})
	require.NoError(t, err)
	total, hit, err := svc.TotalFeeCollected(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, total)
}
