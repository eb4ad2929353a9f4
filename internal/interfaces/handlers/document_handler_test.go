package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/services"
	"github.com/AmbitionsXXXV/doc-editor/internal/infrastructure/memory"
	"github.com/AmbitionsXXXV/doc-editor/internal/interfaces/handlers"
	"github.com/AmbitionsXXXV/doc-editor/pkg/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := logger.InitLogger("dev"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// mapRedis is an in-process RedisClient for wiring the cache service.
type mapRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (r *mapRedis) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found", key)
	}
	return value, nil
}

func (r *mapRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		r.data[key] = string(v)
	case string:
		r.data[key] = v
	}
	return nil
}

func (r *mapRedis) Del(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.data, key)
	}
	return nil
}

func (r *mapRedis) Keys(_ context.Context, pattern string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range r.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func newTestRouter() *gin.Engine {
	store := memory.NewStore()

	cacheSvc := services.NewRedisCacheService(&mapRedis{data: make(map[string]string)}, time.Minute)
	authSvc := services.NewAuthService(store.Users(), store.Sessions(), "test-secret", time.Hour)
	authz := services.NewAuthorizer(store.Permissions())
	docSvc := services.NewDocumentService(store.Documents(), store.Permissions(), authz, store, cacheSvc)

	authHandler := handlers.NewAuthHandler(authSvc)
	docHandler := handlers.NewDocumentHandler(docSvc)

	r := gin.New()
	api := r.Group("/api")

	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.DELETE("/logout", authHandler.Logout)

	docs := api.Group("/documents")
	docs.GET("", handlers.AuthMiddleware(authSvc), docHandler.List)
	docs.POST("", handlers.AuthMiddleware(authSvc), docHandler.Create)
	docs.GET("/:id", handlers.OptionalAuthMiddleware(authSvc), docHandler.GetByID)
	docs.PUT("/:id", handlers.AuthMiddleware(authSvc), docHandler.Update)
	docs.DELETE("/:id", handlers.AuthMiddleware(authSvc), docHandler.Delete)
	docs.POST("/:id/permissions", handlers.AuthMiddleware(authSvc), docHandler.Share)
	docs.GET("/:id/permissions", handlers.AuthMiddleware(authSvc), docHandler.ListPermissions)

	perms := api.Group("/permissions", handlers.AuthMiddleware(authSvc))
	perms.PUT("/:id", docHandler.UpdatePermission)
	perms.DELETE("/:id", docHandler.RevokePermission)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, name, email string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"name": name, "email": email, "password": "password1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"email": email, "password": "password1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createDocument(t *testing.T, r *gin.Engine, token, title string, isPublic bool) entities.Document {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/documents", token, gin.H{
		"title": title, "content": "content of " + title, "is_public": isPublic,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var doc entities.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	return doc
}

func TestDocumentsAPI_RequiresToken(t *testing.T) {
	t.Parallel()

	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/documents", "", gin.H{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/documents", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDocumentsAPI_PublicReadWithoutToken(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	token := registerAndLogin(t, r, "Alice", "alice@example.com")

	public := createDocument(t, r, token, "public doc", true)
	private := createDocument(t, r, token, "private doc", false)

	w := doJSON(t, r, http.MethodGet, "/api/documents/"+public.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/documents/"+private.ID, "", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/documents/nonexistent", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentsAPI_ShareFlow(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	owner := registerAndLogin(t, r, "Alice", "alice@example.com")
	grantee := registerAndLogin(t, r, "Bob", "bob@example.com")

	// Resolve Bob's user id from his document listing identity: create a
	// doc as Bob and read its owner_id back.
	bobDoc := createDocument(t, r, grantee, "bob's doc", false)
	bobID := bobDoc.OwnerID

	doc := createDocument(t, r, owner, "shared doc", false)

	// Bob cannot see the private document yet.
	w := doJSON(t, r, http.MethodGet, "/api/documents/"+doc.ID, grantee, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Share read with Bob.
	w = doJSON(t, r, http.MethodPost, "/api/documents/"+doc.ID+"/permissions", owner, gin.H{
		"user_id": bobID, "permission_level": "read",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var grant entities.PermissionGrant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grant))

	// Sharing twice conflicts.
	w = doJSON(t, r, http.MethodPost, "/api/documents/"+doc.ID+"/permissions", owner, gin.H{
		"user_id": bobID, "permission_level": "readwrite",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Bob can now read but not write.
	w = doJSON(t, r, http.MethodGet, "/api/documents/"+doc.ID, grantee, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/documents/"+doc.ID, grantee, gin.H{"title": "hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Raise to readwrite and retry.
	w = doJSON(t, r, http.MethodPut, "/api/permissions/"+grant.ID, owner, gin.H{
		"permission_level": "readwrite",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/documents/"+doc.ID, grantee, gin.H{"title": "edited"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated entities.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "edited", updated.Title)
	require.Equal(t, "content of shared doc", updated.Content)

	// Only the owner manages grants.
	w = doJSON(t, r, http.MethodDelete, "/api/permissions/"+grant.ID, grantee, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/permissions/"+grant.ID, owner, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/documents/"+doc.ID, grantee, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDocumentsAPI_DeleteCascades(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	owner := registerAndLogin(t, r, "Alice", "alice@example.com")
	other := registerAndLogin(t, r, "Bob", "bob@example.com")

	doc := createDocument(t, r, owner, "doomed", false)

	// Non-owner cannot delete.
	w := doJSON(t, r, http.MethodDelete, "/api/documents/"+doc.ID, other, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/documents/"+doc.ID, owner, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/documents/"+doc.ID, owner, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentsAPI_List(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	token := registerAndLogin(t, r, "Alice", "alice@example.com")

	createDocument(t, r, token, "one", false)
	createDocument(t, r, token, "two", false)

	w := doJSON(t, r, http.MethodGet, "/api/documents?page=1&page_size=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page entities.DocumentPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, int64(2), page.Total)
	require.Len(t, page.Documents, 2)
}

func TestAuthAPI_LogoutInvalidatesToken(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	token := registerAndLogin(t, r, "Alice", "alice@example.com")

	w := doJSON(t, r, http.MethodDelete, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/documents", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
