package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/repositories"
	"github.com/AmbitionsXXXV/doc-editor/internal/utils"
	apperrors "github.com/AmbitionsXXXV/doc-editor/pkg/errors"
	"github.com/AmbitionsXXXV/doc-editor/pkg/logger"
)

// AuthService handles local accounts and JWT sessions. Tokens are signed
// JWTs backed by a sessions row, so logout invalidates a token before its
// expiry.
type AuthService struct {
	userRepo      repositories.UserRepository
	sessionRepo   repositories.SessionRepository
	jwtSecret     []byte
	tokenDuration time.Duration
}

func NewAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	jwtSecret string,
	tokenDuration time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*entities.User, error) {
	if name == "" {
		return nil, apperrors.NewBadRequestError("name is required")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflictError("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  string(hashedPassword),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.NewStoreError("failed to create user", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	// Opportunistic housekeeping: stale session rows are pruned on login
	// rather than by a separate scheduler. Best effort only.
	if err := s.sessionRepo.DeleteExpired(ctx); err != nil {
		logger.Debug("failed to prune expired sessions", zap.Error(err))
	}

	sessionID := uuid.NewString()
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenDuration)

	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.NewStoreError("failed to sign token", err)
	}

	session := &entities.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", apperrors.NewStoreError("failed to create session", err)
	}

	return token, nil
}

// ValidateToken verifies the JWT signature and expiry, then checks the
// session row still exists so logged-out tokens are rejected.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewUnauthorizedError("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid token")
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid token")
	}

	if session.ExpiresAt.Before(time.Now()) {
		s.sessionRepo.Delete(ctx, token)
		return nil, apperrors.NewUnauthorizedError("token expired")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("user not found")
	}

	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessionRepo.Delete(ctx, token)
}
