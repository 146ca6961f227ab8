package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/internal/cache"
	"github.com/folio-works/portfolio-backend/internal/events"
	"github.com/folio-works/portfolio-backend/internal/logger"
	"github.com/folio-works/portfolio-backend/internal/media/ledger"
	"github.com/folio-works/portfolio-backend/internal/media/upload"
	"github.com/folio-works/portfolio-backend/internal/metrics"
	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

const resourceProject = "project"

// GalleryOptions tunes the mutation protocol.
type GalleryOptions struct {
	// MaxAttempts bounds load-compute-write cycles per mutation.
	MaxAttempts int
	// Timeout bounds lock wait plus all attempts.
	Timeout time.Duration
}

// GalleryService edits a project's primary image and gallery. Mutations of
// one project are serialized through the Locker and every gallery write is
// checked against the version that was loaded.
type GalleryService struct {
	repo     Repository
	uploader Uploader
	ledger   ledger.Ledger
	locker   Locker
	cache    *cache.Cache
	events   events.Publisher
	opts     GalleryOptions
	log      *zap.Logger
}

func NewGalleryService(
	repo Repository,
	uploader Uploader,
	l ledger.Ledger,
	locker Locker,
	c *cache.Cache,
	pub events.Publisher,
	opts GalleryOptions,
	log *zap.Logger,
) *GalleryService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &GalleryService{
		repo:     repo,
		uploader: uploader,
		ledger:   l,
		locker:   locker,
		cache:    c,
		events:   pub,
		opts:     opts,
		log:      log,
	}
}

// Append adds refs to the end of the gallery.
func (s *GalleryService) Append(ctx context.Context, projectID string, refs []string) (*domain.Gallery, error) {
	if len(refs) == 0 {
		return nil, s.fail(ctx, "append", projectID, fmt.Errorf("%w: no images to append", domain.ErrInvalidInput))
	}
	g, err := s.mutateImages(ctx, "append", projectID, func(images []string) []string {
		next := make([]string, 0, len(images)+len(refs))
		next = append(next, images...)
		return append(next, refs...)
	})
	if err != nil {
		return nil, err
	}
	s.settle(ctx, refs...)
	s.succeed(ctx, "append", projectID, fmt.Sprintf("%d image(s) added", len(refs)), refs)
	return g, nil
}

// RemoveAt drops the image at index. An out-of-range index leaves the
// gallery as it was.
func (s *GalleryService) RemoveAt(ctx context.Context, projectID string, index int) (*domain.Gallery, error) {
	g, err := s.mutateImages(ctx, "remove", projectID, func(images []string) []string {
		return removeAt(images, index)
	})
	if err != nil {
		return nil, err
	}
	s.succeed(ctx, "remove", projectID, "image removed", nil)
	return g, nil
}

// ReplaceAll overwrites the gallery, typically to reorder it.
func (s *GalleryService) ReplaceAll(ctx context.Context, projectID string, refs []string) (*domain.Gallery, error) {
	if refs == nil {
		refs = []string{}
	}

	g, err := s.withLock(ctx, "replace", projectID, func(ctx context.Context) (*domain.Gallery, error) {
		g, err := s.repo.LoadGallery(ctx, projectID)
		if err != nil {
			return nil, err
		}
		v, err := s.repo.ReplaceImages(ctx, projectID, refs)
		if err != nil {
			return nil, err
		}
		g.Images = append([]string{}, refs...)
		g.Version = v
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	s.settle(ctx, refs...)
	s.succeed(ctx, "replace", projectID, "gallery updated", nil)
	return g, nil
}

// SetPrimary sets or clears the primary image. The reference does not have
// to be a gallery member.
func (s *GalleryService) SetPrimary(ctx context.Context, projectID string, ref *string) (*domain.Gallery, error) {
	g, err := s.withLock(ctx, "set_primary", projectID, func(ctx context.Context) (*domain.Gallery, error) {
		g, err := s.repo.LoadGallery(ctx, projectID)
		if err != nil {
			return nil, err
		}
		v, err := s.repo.SetPrimary(ctx, projectID, ref)
		if err != nil {
			return nil, err
		}
		g.Primary = ref
		g.Version = v
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	if ref != nil {
		s.settle(ctx, *ref)
	}
	s.succeed(ctx, "set_primary", projectID, "primary image updated", nil)
	return g, nil
}

// AddImages uploads files and appends the resulting references in file
// order. If any upload fails nothing is appended.
func (s *GalleryService) AddImages(ctx context.Context, projectID string, files []upload.File) (*domain.Gallery, error) {
	if _, err := s.repo.LoadGallery(ctx, projectID); err != nil {
		return nil, s.fail(ctx, "add_images", projectID, err)
	}

	refs, err := s.uploader.UploadBatch(ctx, files)
	if err != nil {
		return nil, s.fail(ctx, "add_images", projectID, err)
	}

	g, err := s.Append(ctx, projectID, refs)
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("uploaded images left unattached",
			zap.String("project_id", projectID), zap.Strings("refs", refs))
		return nil, err
	}
	return g, nil
}

// UploadPrimary uploads one file and makes it the primary image.
func (s *GalleryService) UploadPrimary(ctx context.Context, projectID string, f upload.File) (*domain.Gallery, error) {
	if _, err := s.repo.LoadGallery(ctx, projectID); err != nil {
		return nil, s.fail(ctx, "upload_primary", projectID, err)
	}

	ref, err := s.uploader.UploadOne(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "upload_primary", projectID, err)
	}
	return s.SetPrimary(ctx, projectID, &ref)
}

// mutateImages runs load, compute, conditional write until the write lands
// or the attempt budget is spent.
func (s *GalleryService) mutateImages(ctx context.Context, op, projectID string, compute func([]string) []string) (*domain.Gallery, error) {
	return s.withLock(ctx, op, projectID, func(ctx context.Context) (*domain.Gallery, error) {
		for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
			g, err := s.repo.LoadGallery(ctx, projectID)
			if err != nil {
				return nil, err
			}

			next := compute(g.Images)
			v, err := s.repo.SaveImages(ctx, projectID, next, g.Version)
			if err == nil {
				g.Images = next
				g.Version = v
				return g, nil
			}
			if !errors.Is(err, domain.ErrConcurrencyConflict) {
				return nil, err
			}

			metrics.IncGalleryConflict(op)
			logger.WithContext(ctx, s.log).Debug("gallery version conflict",
				zap.String("op", op), zap.String("project_id", projectID), zap.Int("attempt", attempt))
		}
		return nil, domain.ErrConcurrencyConflict
	})
}

func (s *GalleryService) withLock(ctx context.Context, op, projectID string, fn func(context.Context) (*domain.Gallery, error)) (*domain.Gallery, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	unlock, err := s.locker.Lock(ctx, "gallery:"+projectID)
	if err != nil {
		return nil, s.fail(ctx, op, projectID, fmt.Errorf("%w: waiting for gallery lock: %v", domain.ErrConcurrencyConflict, err))
	}
	defer unlock()

	g, err := fn(ctx)
	if err != nil {
		return nil, s.fail(ctx, op, projectID, err)
	}
	metrics.IncGalleryMutation(op, "success")
	return g, nil
}

func (s *GalleryService) succeed(ctx context.Context, op, projectID, msg string, refs []string) {
	s.cache.InvalidateProject(ctx, projectID)
	e := events.Success(resourceProject, op, projectID, msg)
	e.Refs = refs
	s.events.Publish(ctx, e)
}

func (s *GalleryService) fail(ctx context.Context, op, projectID string, err error) error {
	metrics.IncGalleryMutation(op, "error")
	s.events.Publish(context.WithoutCancel(ctx), events.Failure(resourceProject, op, projectID, err))
	return err
}

func (s *GalleryService) settle(ctx context.Context, refs ...string) {
	if err := s.ledger.Settle(context.WithoutCancel(ctx), refs...); err != nil {
		logger.WithContext(ctx, s.log).Warn("failed to settle assets", zap.Strings("refs", refs), zap.Error(err))
	}
}

func removeAt(images []string, index int) []string {
	next := make([]string, 0, len(images))
	for i, ref := range images {
		if i != index {
			next = append(next, ref)
		}
	}
	return next
}
