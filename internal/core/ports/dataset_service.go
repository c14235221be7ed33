package ports

import (
	"context"
	"io"

	"github.com/opendatahub/dataset-api/internal/core/domain"
)

// FileInput is an uploaded file as received from the transport layer.
type FileInput struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// UploadDatasetInput carries the multipart form of an upload request.
// Tags is the raw comma-separated form value.
type UploadDatasetInput struct {
	File        FileInput
	Title       string
	Description string
	Category    string
	Tags        string
	Year        int
	Source      string
	IsPremium   bool
	// UploaderID is the authenticated caller's id, empty when anonymous.
	UploaderID string
}

// UpdateDatasetInput is the allow-list of user-settable dataset fields.
// Nil pointers leave the stored value untouched. Storage-owned fields
// (file path, original name, preview, records count, creator) are derived
// and deliberately absent.
type UpdateDatasetInput struct {
	Title       *string
	Description *string
	Category    *string
	Tags        *string // comma-separated
	Year        *int
	Source      *string
	IsPremium   *bool
}

// ListDatasetsInput carries all parameters for the list endpoint.
type ListDatasetsInput struct {
	Category string
	Year     int
	Tags     string // comma-separated
	Query    string
	Page     int
	Limit    int
}

// ListDatasetsResult is returned by List. Items omit the preview.
type ListDatasetsResult struct {
	Items []*domain.Dataset `json:"docs"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// DownloadResult streams a stored file back to the client.
type DownloadResult struct {
	Content io.ReadCloser
	// FileName is the original upload name, suggested to the client.
	FileName string
}

// DatasetService defines use-case operations for datasets.
type DatasetService interface {
	Upload(ctx context.Context, input UploadDatasetInput) (*domain.Dataset, error)
	Update(ctx context.Context, id string, input UpdateDatasetInput) (*domain.Dataset, error)
	// UpdateWithFile applies the same field allow-list as Update and, when
	// file is non-nil, replaces the stored file and its derived fields.
	UpdateWithFile(ctx context.Context, id string, input UpdateDatasetInput, file *FileInput) (*domain.Dataset, error)
	List(ctx context.Context, input ListDatasetsInput) (*ListDatasetsResult, error)
	Featured(ctx context.Context) ([]*domain.Dataset, error)
	Get(ctx context.Context, id string) (*domain.Dataset, error)
	Download(ctx context.Context, id, userID, ip string) (*DownloadResult, error)
	Delete(ctx context.Context, id string) error
}
