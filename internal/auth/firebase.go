package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/folio-works/portfolio-backend/config"
)

// ErrFirebaseNotConfigured is returned when no service account is set.
var ErrFirebaseNotConfigured = errors.New("FIREBASE_CREDENTIALS_PATH is required")

// NewAdminVerifier loads the service account and returns the client that
// verifies admin ID tokens. The credentials file is checked up front so a bad
// mount fails at startup instead of on the first admin request.
func NewAdminVerifier(ctx context.Context, cfg *config.FirebaseConfig) (*auth.Client, error) {
	if cfg.CredentialsPath == "" {
		return nil, ErrFirebaseNotConfigured
	}
	if _, err := os.Stat(cfg.CredentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}
	return client, nil
}
