package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/repositories"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/services"
	"github.com/AmbitionsXXXV/doc-editor/internal/infrastructure/memory"
	apperrors "github.com/AmbitionsXXXV/doc-editor/pkg/errors"
)

func newAuthService() *services.AuthService {
	store := memory.NewStore()
	return services.NewAuthService(store.Users(), store.Sessions(), "test-secret", time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "password1", user.Password, "password must be stored hashed")

	token, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newAuthService()
	ctx := context.Background()

	var bre *apperrors.BadRequestError

	_, err := svc.Register(ctx, "", "alice@example.com", "password1")
	require.ErrorAs(t, err, &bre)

	_, err = svc.Register(ctx, "Alice", "not-an-email", "password1")
	require.ErrorAs(t, err, &bre)

	_, err = svc.Register(ctx, "Alice", "alice@example.com", "short")
	require.ErrorAs(t, err, &bre)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "alice@example.com", "password2")
	var ce *apperrors.ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	var ue *apperrors.UnauthorizedError

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorAs(t, err, &ue)

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	require.ErrorAs(t, err, &ue)
}

func TestAuthService_LogoutInvalidatesToken(t *testing.T) {
	t.Parallel()

	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	// The JWT is still well formed, but its session row is gone.
	_, err = svc.ValidateToken(ctx, token)
	var ue *apperrors.UnauthorizedError
	require.ErrorAs(t, err, &ue)
}

func TestAuthService_Login_PrunesExpiredSessions(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	ctx := context.Background()

	// A negative token duration issues sessions that are already expired.
	expiredSvc := services.NewAuthService(store.Users(), store.Sessions(), "test-secret", -time.Minute)

	_, err := expiredSvc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	staleToken, err := expiredSvc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	_, err = store.Sessions().GetByToken(ctx, staleToken)
	require.NoError(t, err)

	svc := services.NewAuthService(store.Users(), store.Sessions(), "test-secret", time.Hour)
	liveToken, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	// The stale row was pruned by the login; the live one stays.
	_, err = store.Sessions().GetByToken(ctx, staleToken)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = store.Sessions().GetByToken(ctx, liveToken)
	require.NoError(t, err)
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	t.Parallel()

	svc := newAuthService()

	_, err := svc.ValidateToken(context.Background(), "not.a.jwt")
	var ue *apperrors.UnauthorizedError
	require.ErrorAs(t, err, &ue)
}
