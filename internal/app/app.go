package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AmbitionsXXXV/doc-editor/internal/config"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/services"
	"github.com/AmbitionsXXXV/doc-editor/internal/infrastructure/cache"
	"github.com/AmbitionsXXXV/doc-editor/internal/infrastructure/database"
	"github.com/AmbitionsXXXV/doc-editor/internal/infrastructure/database/repositories"
	"github.com/AmbitionsXXXV/doc-editor/internal/interfaces/handlers"
	"github.com/AmbitionsXXXV/doc-editor/pkg/logger"
)

func Run(cfg config.Config) error {
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	permRepo := repositories.NewPermissionRepository(db)

	cacheSvc := services.NewRedisCacheService(redisClient, cfg.Auth.CacheDuration)
	authSvc := services.NewAuthService(userRepo, sessionRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	authz := services.NewAuthorizer(permRepo)
	docSvc := services.NewDocumentService(docRepo, permRepo, authz, db, cacheSvc)

	authHandler := handlers.NewAuthHandler(authSvc)
	docHandler := handlers.NewDocumentHandler(docSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.DELETE("/logout", authHandler.Logout)

		docs := api.Group("/documents")
		{
			docs.GET("", handlers.AuthMiddleware(authSvc), docHandler.List)
			docs.POST("", handlers.AuthMiddleware(authSvc), docHandler.Create)

			// Public documents are readable without a token.
			docs.GET("/:id", handlers.OptionalAuthMiddleware(authSvc), docHandler.GetByID)

			docs.PUT("/:id", handlers.AuthMiddleware(authSvc), docHandler.Update)
			docs.DELETE("/:id", handlers.AuthMiddleware(authSvc), docHandler.Delete)

			docs.POST("/:id/permissions", handlers.AuthMiddleware(authSvc), docHandler.Share)
			docs.GET("/:id/permissions", handlers.AuthMiddleware(authSvc), docHandler.ListPermissions)
		}

		perms := api.Group("/permissions", handlers.AuthMiddleware(authSvc))
		{
			perms.PUT("/:id", docHandler.UpdatePermission)
			perms.DELETE("/:id", docHandler.RevokePermission)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
