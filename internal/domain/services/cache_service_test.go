package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/repositories"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/services"
)

// fakeRedis is an in-process stand-in for the redis client port.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.data[key]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return value, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRedis) Keys(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func TestRedisCacheService_DocumentRoundTrip(t *testing.T) {
	t.Parallel()

	cache := services.NewRedisCacheService(newFakeRedis(), time.Minute)
	ctx := context.Background()

	doc := testDoc("u1", true)
	require.NoError(t, cache.SetDocument(ctx, doc))

	got, err := cache.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)
	require.Equal(t, doc.Title, got.Title)
	require.Equal(t, doc.OwnerID, got.OwnerID)

	require.NoError(t, cache.InvalidateDocument(ctx, doc.ID))

	_, err = cache.GetDocument(ctx, doc.ID)
	require.Error(t, err)
}

func TestRedisCacheService_PageRoundTripAndInvalidation(t *testing.T) {
	t.Parallel()

	cache := services.NewRedisCacheService(newFakeRedis(), time.Minute)
	ctx := context.Background()

	page := &entities.DocumentPage{
		Documents: []*entities.Document{testDoc("u1", false)},
		Total:     1,
		Page:      1,
		PageSize:  20,
	}

	key := cache.ListCacheKey("u1", 1, 20)
	require.NoError(t, cache.SetDocumentPage(ctx, key, page))

	got, err := cache.GetDocumentPage(ctx, key)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Total)
	require.Len(t, got.Documents, 1)

	// Invalidation wipes every cached list page, not just this user's.
	otherKey := cache.ListCacheKey("u2", 3, 10)
	require.NoError(t, cache.SetDocumentPage(ctx, otherKey, page))

	require.NoError(t, cache.InvalidateLists(ctx))

	_, err = cache.GetDocumentPage(ctx, key)
	require.Error(t, err)
	_, err = cache.GetDocumentPage(ctx, otherKey)
	require.Error(t, err)
}

func TestRedisCacheService_ListCacheKeyIsDistinctPerPage(t *testing.T) {
	t.Parallel()

	cache := services.NewRedisCacheService(newFakeRedis(), time.Minute)

	require.NotEqual(t, cache.ListCacheKey("u1", 1, 20), cache.ListCacheKey("u1", 2, 20))
	require.NotEqual(t, cache.ListCacheKey("u1", 1, 20), cache.ListCacheKey("u1", 1, 10))
	require.NotEqual(t, cache.ListCacheKey("u1", 1, 20), cache.ListCacheKey("u2", 1, 20))
}
