package ports

import (
	"context"

	"github.com/opendatahub/dataset-api/internal/core/domain"
)

// ListDatasetsFilter carries all query parameters for listing datasets.
// Soft-deleted records are always excluded by the repository.
type ListDatasetsFilter struct {
	Category string   // optional: exact match
	Year     int      // optional: exact match, 0 = no filter
	Tags     []string // optional: match any
	Query    string   // optional: full-text search over title/tags/source
	Page     int      // 1-based
	Limit    int      // rows per page
}

// DatasetRepository defines persistence operations for datasets. All read
// operations exclude soft-deleted records; list reads omit the preview.
type DatasetRepository interface {
	Insert(ctx context.Context, d *domain.Dataset) (*domain.Dataset, error)
	// FindByID retrieves a dataset including its preview, or
	// domain.ErrDatasetNotFound when absent or soft-deleted.
	FindByID(ctx context.Context, id string) (*domain.Dataset, error)
	// List returns a page of datasets matching filter, newest first, plus the
	// total count of all matches.
	List(ctx context.Context, filter ListDatasetsFilter) ([]*domain.Dataset, int64, error)
	// Latest returns the n most recently created datasets.
	Latest(ctx context.Context, n int) ([]*domain.Dataset, error)
	// Update applies the given fields in a single save and returns the
	// updated dataset.
	Update(ctx context.Context, id string, fields map[string]any) (*domain.Dataset, error)
	SoftDelete(ctx context.Context, id string) error
}

// DownloadLogRepository appends download audit records.
type DownloadLogRepository interface {
	Insert(ctx context.Context, log *domain.DownloadLog) error
}
