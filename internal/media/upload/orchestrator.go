// Package upload validates a batch of files and uploads it to the asset host.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/folio-works/portfolio-backend/internal/media/assethost"
	"github.com/folio-works/portfolio-backend/internal/media/ledger"
	"github.com/folio-works/portfolio-backend/internal/metrics"
)

// MaxFileSize is the per-file upload limit (5 MiB).
const MaxFileSize int64 = 5 << 20

var allowedTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"webp": "image/webp",
}

// File is one file of a batch. ContentType is the declared type, either bare
// ("png") or a MIME type ("image/png").
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Orchestrator validates and uploads files.
type Orchestrator struct {
	gateway assethost.Gateway
	ledger  ledger.Ledger
	timeout time.Duration
	log     *zap.Logger
}

func NewOrchestrator(gw assethost.Gateway, l ledger.Ledger, timeout time.Duration, log *zap.Logger) *Orchestrator {
	return &Orchestrator{gateway: gw, ledger: l, timeout: timeout, log: log}
}

// Validate checks every file of the batch. The first violation is returned.
func Validate(files []File) error {
	if len(files) == 0 {
		return &ValidationError{Index: -1, Constraint: ConstraintCount, Detail: "no files provided"}
	}
	for i, f := range files {
		if _, ok := normalizeType(f.ContentType, f.Name); !ok {
			return &ValidationError{
				Index:      i,
				Name:       f.Name,
				Constraint: ConstraintType,
				Detail:     fmt.Sprintf("type %q is not one of png, jpeg, jpg, webp", f.ContentType),
			}
		}
		if f.Size > MaxFileSize {
			return &ValidationError{
				Index:      i,
				Name:       f.Name,
				Constraint: ConstraintSize,
				Detail:     fmt.Sprintf("size %d exceeds %d bytes", f.Size, MaxFileSize),
			}
		}
	}
	return nil
}

// UploadBatch validates all files, then uploads them concurrently. The result
// has one reference per file in input order. On any failure nothing is
// returned except an *UploadError carrying the orphaned references.
func (o *Orchestrator) UploadBatch(ctx context.Context, files []File) ([]string, error) {
	if err := Validate(files); err != nil {
		metrics.IncUploadBatch("invalid")
		return nil, err
	}

	refs := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)

	for i, f := range files {
		g.Go(func() error {
			ref, err := o.upload(gctx, f)
			if err != nil {
				return &UploadError{Index: i, Name: f.Name, Err: err}
			}
			refs[i] = ref
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.IncUploadBatch("failed")

		var upErr *UploadError
		if !errors.As(err, &upErr) {
			upErr = &UploadError{Index: -1, Err: err}
		}
		for _, ref := range refs {
			if ref != "" {
				upErr.Orphaned = append(upErr.Orphaned, ref)
			}
		}
		o.log.Warn("upload batch failed",
			zap.Int("files", len(files)),
			zap.Int("failed_index", upErr.Index),
			zap.Strings("orphaned", upErr.Orphaned),
			zap.Error(upErr.Err),
		)
		return nil, upErr
	}

	metrics.IncUploadBatch("success")
	o.log.Info("upload batch complete", zap.Int("files", len(files)))
	return refs, nil
}

// UploadOne validates and uploads a single file.
func (o *Orchestrator) UploadOne(ctx context.Context, f File) (string, error) {
	refs, err := o.UploadBatch(ctx, []File{f})
	if err != nil {
		return "", err
	}
	return refs[0], nil
}

func (o *Orchestrator) upload(ctx context.Context, f File) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	contentType, _ := normalizeType(f.ContentType, f.Name)
	ref, err := o.gateway.Upload(ctx, assethost.Upload{
		Filename:    f.Name,
		ContentType: contentType,
		Body:        f.Body,
	})
	if err != nil {
		return "", err
	}

	if err := o.ledger.Track(context.WithoutCancel(ctx), ref); err != nil {
		o.log.Warn("failed to track uploaded asset", zap.String("ref", ref), zap.Error(err))
	}
	return ref, nil
}

// normalizeType maps a declared type to its MIME form. Without a declared
// type the file extension decides.
func normalizeType(declared, name string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimPrefix(t, "image/")
	if t == "" {
		t = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}
	mime, ok := allowedTypes[t]
	return mime, ok
}
