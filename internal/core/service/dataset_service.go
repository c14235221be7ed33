package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/opendatahub/dataset-api/internal/api/metrics"
	"github.com/opendatahub/dataset-api/internal/core/domain"
	"github.com/opendatahub/dataset-api/internal/core/ports"
	"github.com/opendatahub/dataset-api/internal/fileparse"
)

const featuredCount = 5

// DatasetService orchestrates the upload/parse/list pipeline around the
// dataset repository and the file store.
type DatasetService struct {
	datasets ports.DatasetRepository
	logs     ports.DownloadLogRepository
	store    ports.FileStore
	logger   zerolog.Logger
}

func NewDatasetService(datasets ports.DatasetRepository, logs ports.DownloadLogRepository, store ports.FileStore, logger zerolog.Logger) *DatasetService {
	return &DatasetService{datasets: datasets, logs: logs, store: store, logger: logger}
}

// Upload stores the raw file, parses it into rows, and persists a new
// dataset whose preview holds the first rows. A failed parse or an
// unsupported type removes the just-stored file before returning, so no
// orphan is left behind.
func (s *DatasetService) Upload(ctx context.Context, input ports.UploadDatasetInput) (*domain.Dataset, error) {
	if input.File.Content == nil || input.File.Name == "" {
		return nil, domain.ErrMissingFile
	}

	stored, err := s.store.Save(input.File.Name, input.File.Content)
	if err != nil {
		metrics.UploadErrorsTotal.WithLabelValues("storage_failed").Inc()
		return nil, err
	}

	rows, format, err := s.parseStored(stored, input.File)
	if err != nil {
		if rmErr := s.store.Remove(stored); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("file", stored).Msg("could not remove rejected upload")
		}
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = input.File.Name
	}
	category := input.Category
	if category == "" {
		category = "General"
	}

	ds := &domain.Dataset{
		Title:            title,
		Description:      input.Description,
		Category:         category,
		Tags:             splitTags(input.Tags),
		Year:             input.Year,
		Source:           input.Source,
		Formats:          []string{string(format)},
		FilePath:         stored,
		FileOriginalName: input.File.Name,
		Preview:          previewOf(rows),
		RecordsCount:     len(rows),
		IsPremium:        input.IsPremium,
		CreatedBy:        input.UploaderID,
		CreatedAt:        time.Now().UTC(),
	}

	created, err := s.datasets.Insert(ctx, ds)
	if err != nil {
		if rmErr := s.store.Remove(stored); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("file", stored).Msg("could not remove unsaved upload")
		}
		return nil, err
	}

	metrics.UploadsTotal.WithLabelValues(string(format)).Inc()
	s.logger.Info().
		Str("dataset_id", created.ID).
		Str("format", string(format)).
		Int("records", created.RecordsCount).
		Msg("dataset uploaded")

	return created, nil
}

// Update applies the metadata allow-list in a single save. Storage-owned
// fields are not part of the input and can never change here.
func (s *DatasetService) Update(ctx context.Context, id string, input ports.UpdateDatasetInput) (*domain.Dataset, error) {
	fields := metadataFields(input)
	if len(fields) == 0 {
		return s.datasets.FindByID(ctx, id)
	}
	return s.datasets.Update(ctx, id, fields)
}

// UpdateWithFile applies the same metadata allow-list and, when a
// replacement file is present, swaps all file-derived fields in the same
// save. The old stored file is deleted only after the new record is
// accepted; if the new file fails to parse, the record and the old file are
// left untouched and only the new file is removed.
func (s *DatasetService) UpdateWithFile(ctx context.Context, id string, input ports.UpdateDatasetInput, file *ports.FileInput) (*domain.Dataset, error) {
	existing, err := s.datasets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := metadataFields(input)

	var stored, oldFile string
	if file != nil {
		stored, err = s.store.Save(file.Name, file.Content)
		if err != nil {
			metrics.UploadErrorsTotal.WithLabelValues("storage_failed").Inc()
			return nil, err
		}

		rows, format, err := s.parseStored(stored, *file)
		if err != nil {
			if rmErr := s.store.Remove(stored); rmErr != nil {
				s.logger.Warn().Err(rmErr).Str("file", stored).Msg("could not remove rejected replacement")
			}
			return nil, err
		}

		fields["file_path"] = stored
		fields["file_original_name"] = file.Name
		fields["formats"] = []string{string(format)}
		fields["preview"] = previewOf(rows)
		fields["records_count"] = len(rows)
		oldFile = existing.FilePath
	}

	if len(fields) == 0 {
		return existing, nil
	}

	updated, err := s.datasets.Update(ctx, id, fields)
	if err != nil {
		if stored != "" {
			if rmErr := s.store.Remove(stored); rmErr != nil {
				s.logger.Warn().Err(rmErr).Str("file", stored).Msg("could not remove unsaved replacement")
			}
		}
		return nil, err
	}

	// Old file goes away only after the new record is durable.
	if oldFile != "" && oldFile != stored {
		if rmErr := s.store.Remove(oldFile); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("file", oldFile).Msg("could not remove replaced file")
		}
	}

	return updated, nil
}

// List returns a page of non-deleted datasets, newest first, preview
// omitted.
func (s *DatasetService) List(ctx context.Context, input ports.ListDatasetsInput) (*ports.ListDatasetsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	items, total, err := s.datasets.List(ctx, ports.ListDatasetsFilter{
		Category: input.Category,
		Year:     input.Year,
		Tags:     splitTags(input.Tags),
		Query:    input.Query,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListDatasetsResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Featured returns the latest datasets, preview omitted.
func (s *DatasetService) Featured(ctx context.Context) ([]*domain.Dataset, error) {
	return s.datasets.Latest(ctx, featuredCount)
}

// Get returns the full record including preview.
func (s *DatasetService) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	return s.datasets.FindByID(ctx, id)
}

// Download resolves the stored file and returns a stream plus the original
// filename. Soft-deleted datasets are not downloadable. An audit record is
// written per successful download; audit failures are logged, not surfaced.
func (s *DatasetService) Download(ctx context.Context, id, userID, ip string) (*ports.DownloadResult, error) {
	ds, err := s.datasets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.store.Open(ds.FilePath)
	if err != nil {
		return nil, err
	}

	if logErr := s.logs.Insert(ctx, &domain.DownloadLog{
		DatasetID: ds.ID,
		UserID:    userID,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}); logErr != nil {
		s.logger.Warn().Err(logErr).Str("dataset_id", ds.ID).Msg("could not write download log")
	}

	metrics.DownloadsTotal.Inc()

	name := ds.FileOriginalName
	if name == "" {
		name = ds.FilePath
	}
	return &ports.DownloadResult{Content: content, FileName: name}, nil
}

// Delete marks the dataset as deleted. The stored file is kept so the
// record remains recoverable.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	return s.datasets.SoftDelete(ctx, id)
}

// parseStored detects the format from the upload's name and MIME type and
// parses the stored bytes into rows.
func (s *DatasetService) parseStored(stored string, file ports.FileInput) ([]domain.Row, fileparse.Format, error) {
	format, err := fileparse.Detect(file.Name, file.ContentType)
	if err != nil {
		metrics.UploadErrorsTotal.WithLabelValues("unsupported_format").Inc()
		return nil, "", err
	}

	rows, err := fileparse.Parse(s.store.Path(stored), format)
	if err != nil {
		metrics.UploadErrorsTotal.WithLabelValues("parse_failed").Inc()
		s.logger.Error().Err(err).Str("file", stored).Msg("file parse failed")
		return nil, "", domain.ErrParseFailed
	}
	return rows, format, nil
}

func previewOf(rows []domain.Row) []domain.Row {
	if len(rows) > domain.PreviewLimit {
		rows = rows[:domain.PreviewLimit]
	}
	preview := make([]domain.Row, len(rows))
	copy(preview, rows)
	return preview
}

// metadataFields maps the update allow-list onto repository field names.
func metadataFields(input ports.UpdateDatasetInput) map[string]any {
	fields := make(map[string]any)
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Tags != nil {
		fields["tags"] = splitTags(*input.Tags)
	}
	if input.Year != nil {
		fields["year"] = *input.Year
	}
	if input.Source != nil {
		fields["source"] = *input.Source
	}
	if input.IsPremium != nil {
		fields["is_premium"] = *input.IsPremium
	}
	return fields
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
