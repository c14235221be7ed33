package domain

import (
	"errors"
	"time"
)

// PreviewLimit is the maximum number of parsed rows stored alongside a
// dataset's metadata.
const PreviewLimit = 10

var ErrDatasetNotFound = errors.New("dataset not found")
var ErrMissingFile = errors.New("no file uploaded")
var ErrUnsupportedFormat = errors.New("unsupported file type")
var ErrParseFailed = errors.New("could not parse file")
var ErrFileMissing = errors.New("file missing")
var ErrForbidden = errors.New("access forbidden")

// Row is a single parsed record of an uploaded file, keyed by column name.
type Row map[string]any

// Dataset is the core aggregate root. The underlying uploaded file is
// referenced by FilePath (stored filename only); the preview rows are an
// owned copy, bounded by PreviewLimit.
type Dataset struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Tags             []string  `json:"tags"`
	Year             int       `json:"year,omitempty"`
	Source           string    `json:"source,omitempty"`
	Formats          []string  `json:"formats"`
	FilePath         string    `json:"file_path"`
	FileOriginalName string    `json:"file_original_name"`
	Preview          []Row     `json:"preview,omitempty"`
	RecordsCount     int       `json:"records_count"`
	IsPremium        bool      `json:"is_premium"`
	CreatedBy        string    `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	Deleted          bool      `json:"-"`
}

// DownloadLog is an append-only audit record written on each successful
// download. User is empty for anonymous downloads.
type DownloadLog struct {
	ID        string    `json:"id"`
	DatasetID string    `json:"dataset_id"`
	UserID    string    `json:"user_id,omitempty"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}
