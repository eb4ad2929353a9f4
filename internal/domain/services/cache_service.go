package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
)

const (
	docKeyPrefix  = "doc:"
	listKeyPrefix = "docs:list:"
)

// CacheService is a read-through cache of document rows and per-user list
// pages. Permission grants are deliberately never cached; authorization
// always reads them from the store.
type CacheService interface {
	GetDocument(ctx context.Context, docID string) (*entities.Document, error)
	SetDocument(ctx context.Context, doc *entities.Document) error
	GetDocumentPage(ctx context.Context, key string) (*entities.DocumentPage, error)
	SetDocumentPage(ctx context.Context, key string, page *entities.DocumentPage) error
	InvalidateDocument(ctx context.Context, docID string) error
	InvalidateLists(ctx context.Context) error
	ListCacheKey(userID string, page, pageSize int) string
}

type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, duration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

type redisCacheService struct {
	client        RedisClient
	cacheDuration time.Duration
}

func NewRedisCacheService(client RedisClient, cacheDuration time.Duration) CacheService {
	return &redisCacheService{
		client:        client,
		cacheDuration: cacheDuration,
	}
}

func (s *redisCacheService) GetDocument(ctx context.Context, docID string) (*entities.Document, error) {
	data, err := s.client.Get(ctx, docKeyPrefix+docID)
	if err != nil {
		return nil, err
	}

	var doc entities.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func (s *redisCacheService) SetDocument(ctx context.Context, doc *entities.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, docKeyPrefix+doc.ID, data, s.cacheDuration)
}

func (s *redisCacheService) GetDocumentPage(ctx context.Context, key string) (*entities.DocumentPage, error) {
	data, err := s.client.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var page entities.DocumentPage
	if err := json.Unmarshal([]byte(data), &page); err != nil {
		return nil, err
	}

	return &page, nil
}

func (s *redisCacheService) SetDocumentPage(ctx context.Context, key string, page *entities.DocumentPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, data, s.cacheDuration)
}

func (s *redisCacheService) InvalidateDocument(ctx context.Context, docID string) error {
	return s.client.Del(ctx, docKeyPrefix+docID)
}

func (s *redisCacheService) InvalidateLists(ctx context.Context) error {
	keys, err := s.client.Keys(ctx, listKeyPrefix+"*")
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return s.client.Del(ctx, keys...)
	}

	return nil
}

func (s *redisCacheService) ListCacheKey(userID string, page, pageSize int) string {
	return fmt.Sprintf("%suser=%s:page=%d:size=%d", listKeyPrefix, userID, page, pageSize)
}
