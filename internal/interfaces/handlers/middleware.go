package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/services"
	"github.com/AmbitionsXXXV/doc-editor/internal/interfaces/dto"
	"github.com/AmbitionsXXXV/doc-editor/pkg/errors"
)

const userKey = "currentUser"

func respondWithError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, dto.APIError{
		Error: dto.ErrorResponse{
			Code: httpStatus,
			Text: message,
		},
	})
}

func handleServiceError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *errors.BadRequestError:
		respondWithError(c, http.StatusBadRequest, e.Message)
	case *errors.UnauthorizedError:
		respondWithError(c, http.StatusUnauthorized, e.Message)
	case *errors.ForbiddenError:
		respondWithError(c, http.StatusForbidden, e.Message)
	case *errors.NotFoundError:
		respondWithError(c, http.StatusNotFound, e.Message)
	case *errors.ConflictError:
		respondWithError(c, http.StatusConflict, e.Message)
	case *errors.StoreError:
		respondWithError(c, http.StatusServiceUnavailable, e.Message)
	default:
		respondWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// AuthMiddleware requires a valid bearer token and stores the user in the
// request context.
func AuthMiddleware(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respondWithError(c, http.StatusUnauthorized, "authorization token required")
			c.Abort()
			return
		}

		user, err := authSvc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			handleServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the bearer token when present but lets
// anonymous requests through; public document reads need no identity.
func OptionalAuthMiddleware(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			if user, err := authSvc.ValidateToken(c.Request.Context(), token); err == nil {
				c.Set(userKey, user)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
