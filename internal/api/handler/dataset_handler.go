package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/opendatahub/dataset-api/internal/core/domain"
	"github.com/opendatahub/dataset-api/internal/core/ports"
)

// DatasetHandler handles HTTP requests for dataset operations.
type DatasetHandler struct {
	service ports.DatasetService
}

func NewDatasetHandler(service ports.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

type listDatasetsQuery struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Query    string `query:"q"`
	Category string `query:"category"`
	Year     int    `query:"year"`
	Tags     string `query:"tags"`
}

type updateDatasetRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Tags        *string `json:"tags"`
	Year        *int    `json:"year"`
	Source      *string `json:"source"`
	IsPremium   *bool   `json:"is_premium"`
}

func (r updateDatasetRequest) toInput() ports.UpdateDatasetInput {
	return ports.UpdateDatasetInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		Year:        r.Year,
		Source:      r.Source,
		IsPremium:   r.IsPremium,
	}
}

type datasetResponse struct {
	Message string          `json:"message"`
	Dataset *domain.Dataset `json:"dataset"`
}

// List handles GET /api/datasets.
//
// @Summary      List datasets with pagination, filters and full-text search
// @Tags         datasets
// @Produce      json
// @Param        page      query  int     false  "Page number (1-based)"
// @Param        limit     query  int     false  "Page size"
// @Param        q         query  string  false  "Full-text search over title/tags/source"
// @Param        category  query  string  false  "Exact category match"
// @Param        year      query  int     false  "Exact year match"
// @Param        tags      query  string  false  "Comma-separated tags, match any"
// @Success      200  {object}  ports.ListDatasetsResult
// @Router       /api/datasets [get]
func (h *DatasetHandler) List(c echo.Context) error {
	var q listDatasetsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.List(c.Request().Context(), ports.ListDatasetsInput{
		Category: q.Category,
		Year:     q.Year,
		Tags:     q.Tags,
		Query:    q.Query,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Featured handles GET /api/datasets/featured — the latest datasets without
// preview rows.
func (h *DatasetHandler) Featured(c echo.Context) error {
	items, err := h.service.Featured(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/datasets/:id — the full record including preview.
func (h *DatasetHandler) Get(c echo.Context) error {
	ds, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ds)
}

// Upload handles POST /api/datasets/upload (multipart).
//
// @Summary      Upload a tabular file as a new dataset
// @Tags         datasets
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  datasetResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/datasets/upload [post]
func (h *DatasetHandler) Upload(c echo.Context) error {
	input := ports.UploadDatasetInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Tags:        c.FormValue("tags"),
		Source:      c.FormValue("source"),
		IsPremium:   c.FormValue("isPremium") == "true",
	}
	if y := c.FormValue("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "year must be a number")
		}
		input.Year = year
	}
	if u := currentUser(c); u != nil {
		input.UploaderID = u.ID
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ErrMissingFile
	}
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	input.File = ports.FileInput{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     src,
	}

	ds, err := h.service.Upload(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, datasetResponse{Message: "Upload successful", Dataset: ds})
}

// Update handles PATCH /api/datasets/:id — metadata only.
func (h *DatasetHandler) Update(c echo.Context) error {
	var req updateDatasetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ds, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, datasetResponse{Message: "Dataset updated successfully", Dataset: ds})
}

// UpdateWithFile handles POST /api/datasets/:id/update-with-file
// (multipart) — metadata plus an optional replacement file.
func (h *DatasetHandler) UpdateWithFile(c echo.Context) error {
	input := formUpdateInput(c)

	var file *ports.FileInput
	if fh, err := c.FormFile("file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open uploaded file: %w", err)
		}
		defer src.Close()
		file = &ports.FileInput{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Content:     src,
		}
	}

	ds, err := h.service.UpdateWithFile(c.Request().Context(), c.Param("id"), input, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, datasetResponse{Message: "Dataset updated successfully", Dataset: ds})
}

// Delete handles DELETE /api/datasets/:id — soft delete.
func (h *DatasetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Dataset deleted successfully"})
}

// Download handles GET /api/datasets/:id/download, streaming the stored
// file under its original name.
func (h *DatasetHandler) Download(c echo.Context) error {
	var userID string
	if u := currentUser(c); u != nil {
		userID = u.ID
	}

	res, err := h.service.Download(c.Request().Context(), c.Param("id"), userID, c.RealIP())
	if err != nil {
		return err
	}
	defer res.Content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.FileName))
	return c.Stream(http.StatusOK, "application/octet-stream", res.Content)
}

// formUpdateInput collects the metadata allow-list from multipart form
// values. An absent or empty form value leaves the field untouched,
// matching the PATCH semantics of the JSON variant.
func formUpdateInput(c echo.Context) ports.UpdateDatasetInput {
	var input ports.UpdateDatasetInput
	if v := c.FormValue("title"); v != "" {
		input.Title = &v
	}
	if v := c.FormValue("description"); v != "" {
		input.Description = &v
	}
	if v := c.FormValue("category"); v != "" {
		input.Category = &v
	}
	if v := c.FormValue("tags"); v != "" {
		input.Tags = &v
	}
	if v := c.FormValue("source"); v != "" {
		input.Source = &v
	}
	if v := c.FormValue("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			input.Year = &year
		}
	}
	if v := c.FormValue("isPremium"); v != "" {
		premium := v == "true"
		input.IsPremium = &premium
	}
	return input
}
