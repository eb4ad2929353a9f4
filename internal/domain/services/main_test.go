package services_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger("dev"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// missCache is a CacheService that never hits, so every read in the service
// tests goes to the backing store.
type missCache struct{}

var errCacheMiss = errors.New("cache miss")

func (missCache) GetDocument(context.Context, string) (*entities.Document, error) {
	return nil, errCacheMiss
}

func (missCache) SetDocument(context.Context, *entities.Document) error { return nil }

func (missCache) GetDocumentPage(context.Context, string) (*entities.DocumentPage, error) {
	return nil, errCacheMiss
}

func (missCache) SetDocumentPage(context.Context, string, *entities.DocumentPage) error { return nil }

func (missCache) InvalidateDocument(context.Context, string) error { return nil }

func (missCache) InvalidateLists(context.Context) error { return nil }

func (missCache) ListCacheKey(userID string, page, pageSize int) string {
	return fmt.Sprintf("docs:list:user=%s:page=%d:size=%d", userID, page, pageSize)
}
