package service

import (
	"context"

	"github.com/folio-works/portfolio-backend/internal/media/upload"
	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

// Repository is the project store. ProjectRepository and MemoryRepository
// both satisfy it.
type Repository interface {
	Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, id string) error

	LoadGallery(ctx context.Context, id string) (*domain.Gallery, error)
	SaveImages(ctx context.Context, id string, images []string, expectedVersion int64) (int64, error)
	ReplaceImages(ctx context.Context, id string, images []string) (int64, error)
	SetPrimary(ctx context.Context, id string, ref *string) (int64, error)
}

// Uploader sends files to the asset host.
type Uploader interface {
	UploadBatch(ctx context.Context, files []upload.File) ([]string, error)
	UploadOne(ctx context.Context, f upload.File) (string, error)
}
