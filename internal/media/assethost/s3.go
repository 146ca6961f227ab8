package assethost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/internal/metrics"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the S3 backed host.
type S3Config struct {
	Bucket    string
	Region    string
	Prefix    string
	CDNDomain string
}

// S3Gateway stores objects in a bucket and returns CDN URLs. The URLs are
// served as stored; pair it with transform.Passthrough.
type S3Gateway struct {
	client ObjectPutter
	cfg    S3Config
	log    *zap.Logger
	now    func() time.Time
}

// NewS3Gateway wraps an existing client.
func NewS3Gateway(client ObjectPutter, cfg S3Config, log *zap.Logger) *S3Gateway {
	return &S3Gateway{client: client, cfg: cfg, log: log, now: time.Now}
}

// NewS3GatewayFromEnv loads the default AWS credential chain.
func NewS3GatewayFromEnv(ctx context.Context, cfg S3Config, log *zap.Logger) (*S3Gateway, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewS3Gateway(s3.NewFromConfig(awsCfg), cfg, log), nil
}

func (g *S3Gateway) Provider() string { return "s3" }

// Host returns the hostname that appears in every reference this gateway
// produces.
func (g *S3Gateway) Host() string {
	if g.cfg.CDNDomain != "" {
		return g.cfg.CDNDomain
	}
	return fmt.Sprintf("%s.s3.%s.amazonaws.com", g.cfg.Bucket, g.cfg.Region)
}

func (g *S3Gateway) Upload(ctx context.Context, u Upload) (string, error) {
	start := time.Now()
	ref, err := g.upload(ctx, u)

	status := "success"
	if err != nil {
		status = "error"
		g.log.Warn("asset upload failed", zap.String("filename", u.Filename), zap.Error(err))
	}
	metrics.RecordAssetUpload(g.Provider(), status, time.Since(start))

	return ref, err
}

func (g *S3Gateway) upload(ctx context.Context, u Upload) (string, error) {
	data, err := io.ReadAll(u.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload body: %w", err)
	}

	detected := mimetype.Detect(data)
	contentType := detected.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	ext := extensionFor(contentType, u.Filename)
	key := g.objectKey(ext)

	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(g.cfg.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading to S3: %w", err)
	}

	return fmt.Sprintf("https://%s/%s", g.Host(), key), nil
}

func (g *S3Gateway) objectKey(ext string) string {
	now := g.now().UTC()
	return path.Join(
		strings.Trim(g.cfg.Prefix, "/"),
		"upload",
		now.Format("2006"),
		now.Format("01"),
		uuid.New().String()+ext,
	)
}

func extensionFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	return ".bin"
}
