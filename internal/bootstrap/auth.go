package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/config"
	"github.com/folio-works/portfolio-backend/internal/auth"
	"github.com/folio-works/portfolio-backend/internal/auth/middleware"
)

// AdminAuth returns the middleware guarding the admin group. Without
// Firebase credentials outside production it falls back to DevUser.
func AdminAuth(ctx context.Context, cfg *config.Config, log *zap.Logger) (gin.HandlerFunc, error) {
	if cfg.Firebase.CredentialsPath == "" {
		if cfg.App.Environment == "production" {
			return nil, fmt.Errorf("%w in production", auth.ErrFirebaseNotConfigured)
		}
		log.Warn("firebase not configured, admin routes trust X-User-Id")
		return auth.DevUser(), nil
	}

	client, err := auth.NewAdminVerifier(ctx, &cfg.Firebase)
	if err != nil {
		return nil, err
	}
	return middleware.FirebaseAuthMiddleware(client), nil
}
