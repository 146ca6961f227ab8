package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/config"
	"github.com/folio-works/portfolio-backend/internal/media/assethost"
	"github.com/folio-works/portfolio-backend/internal/media/transform"
)

// AssetHost builds the upload gateway and the engine that derives delivery
// URLs for its references. S3 objects are served as stored, so they get a
// pass-through engine.
func AssetHost(ctx context.Context, cfg config.AssetHostConfig, log *zap.Logger) (assethost.Gateway, transform.Engine, error) {
	if cfg.Provider == "s3" {
		gw, err := assethost.NewS3GatewayFromEnv(ctx, assethost.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			CDNDomain: cfg.CDNDomain,
		}, log)
		if err != nil {
			return nil, transform.Engine{}, err
		}
		return gw, transform.Passthrough(), nil
	}

	gw := assethost.NewCloudinaryClient(assethost.CloudinaryConfig{
		BaseURL:      cfg.APIBaseURL,
		CloudName:    cfg.CloudName,
		UploadPreset: cfg.UploadPreset,
		RateLimit:    cfg.RateLimit,
		Hints:        assethost.DefaultHints(),
	}, log)
	return gw, transform.New(transform.DefaultHostMarker), nil
}
