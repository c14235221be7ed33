package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/opendatahub/dataset-api/internal/api/middleware"
	"github.com/opendatahub/dataset-api/internal/core/domain"
	"github.com/opendatahub/dataset-api/internal/core/ports"
)

type stubDatasetService struct {
	uploadInput   ports.UploadDatasetInput
	uploadContent []byte
	uploaded      *domain.Dataset
	uploadErr     error

	listInput  ports.ListDatasetsInput
	listResult *ports.ListDatasetsResult

	getResult *domain.Dataset
	getErr    error

	downloadResult *ports.DownloadResult
	downloadErr    error
	downloadUser   string
	downloadIP     string

	deletedID string
}

func (s *stubDatasetService) Upload(_ context.Context, input ports.UploadDatasetInput) (*domain.Dataset, error) {
	// The part reader is only valid during the handler call.
	if input.File.Content != nil {
		s.uploadContent, _ = io.ReadAll(input.File.Content)
	}
	s.uploadInput = input
	return s.uploaded, s.uploadErr
}

func (s *stubDatasetService) Update(_ context.Context, _ string, _ ports.UpdateDatasetInput) (*domain.Dataset, error) {
	return s.getResult, s.getErr
}

func (s *stubDatasetService) UpdateWithFile(_ context.Context, _ string, _ ports.UpdateDatasetInput, _ *ports.FileInput) (*domain.Dataset, error) {
	return s.getResult, s.getErr
}

func (s *stubDatasetService) List(_ context.Context, input ports.ListDatasetsInput) (*ports.ListDatasetsResult, error) {
	s.listInput = input
	return s.listResult, nil
}

func (s *stubDatasetService) Featured(_ context.Context) ([]*domain.Dataset, error) {
	return []*domain.Dataset{s.getResult}, nil
}

func (s *stubDatasetService) Get(_ context.Context, _ string) (*domain.Dataset, error) {
	return s.getResult, s.getErr
}

func (s *stubDatasetService) Download(_ context.Context, _, userID, ip string) (*ports.DownloadResult, error) {
	s.downloadUser = userID
	s.downloadIP = ip
	return s.downloadResult, s.downloadErr
}

func (s *stubDatasetService) Delete(_ context.Context, id string) error {
	s.deletedID = id
	return nil
}

func multipartBody(t *testing.T, fields map[string]string, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(fileContent)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestDatasetHandler_Upload(t *testing.T) {
	svc := &stubDatasetService{uploaded: &domain.Dataset{ID: "ds-1", Title: "T"}}
	h := NewDatasetHandler(svc)

	body, contentType := multipartBody(t, map[string]string{
		"title":     "T",
		"tags":      "a,b",
		"year":      "2023",
		"isPremium": "true",
	}, "data.csv", "a,b\n1,2\n")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserContextKey, &domain.User{ID: "u9", Role: domain.RoleAdmin})

	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	in := svc.uploadInput
	if in.Title != "T" || in.Tags != "a,b" || in.Year != 2023 || !in.IsPremium {
		t.Fatalf("form fields not forwarded: %+v", in)
	}
	if in.File.Name != "data.csv" {
		t.Fatalf("file name not forwarded: %s", in.File.Name)
	}
	if in.UploaderID != "u9" {
		t.Fatalf("uploader identity not forwarded: %s", in.UploaderID)
	}
	if string(svc.uploadContent) != "a,b\n1,2\n" {
		t.Fatalf("file content not forwarded: %q", svc.uploadContent)
	}
}

func TestDatasetHandler_Upload_NoFile(t *testing.T) {
	h := NewDatasetHandler(&stubDatasetService{})

	body, contentType := multipartBody(t, map[string]string{"title": "T"}, "", "")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Upload(c); !errors.Is(err, domain.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestDatasetHandler_List_ForwardsQuery(t *testing.T) {
	svc := &stubDatasetService{listResult: &ports.ListDatasetsResult{
		Items: []*domain.Dataset{},
		Total: 0,
		Page:  2,
		Limit: 5,
	}}
	h := NewDatasetHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/datasets?page=2&limit=5&category=health&year=2021&q=water&tags=a,b", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	in := svc.listInput
	if in.Page != 2 || in.Limit != 5 || in.Category != "health" || in.Year != 2021 || in.Query != "water" || in.Tags != "a,b" {
		t.Fatalf("query not forwarded: %+v", in)
	}
}

func TestDatasetHandler_Get(t *testing.T) {
	svc := &stubDatasetService{getResult: &domain.Dataset{
		ID:      "ds-1",
		Title:   "T",
		Preview: []domain.Row{{"a": "1"}},
	}}
	h := NewDatasetHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ds-1")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	var resp domain.Dataset
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Preview) != 1 {
		t.Fatalf("detail response should include preview, got %+v", resp)
	}
}

func TestDatasetHandler_Get_NotFound(t *testing.T) {
	h := NewDatasetHandler(&stubDatasetService{getErr: domain.ErrDatasetNotFound})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Get(c); !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestDatasetHandler_Download_SetsDisposition(t *testing.T) {
	svc := &stubDatasetService{downloadResult: &ports.DownloadResult{
		Content:  io.NopCloser(strings.NewReader("a,b\n1,2\n")),
		FileName: "report.csv",
	}}
	h := NewDatasetHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ds-1")

	if err := h.Download(c); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); got != `attachment; filename="report.csv"` {
		t.Fatalf("unexpected disposition: %s", got)
	}
	if rec.Body.String() != "a,b\n1,2\n" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
	if svc.downloadIP != "203.0.113.9" {
		t.Fatalf("client ip not forwarded: %s", svc.downloadIP)
	}
	if svc.downloadUser != "" {
		t.Fatalf("anonymous download should have no user id, got %q", svc.downloadUser)
	}
}

func TestDatasetHandler_Delete(t *testing.T) {
	svc := &stubDatasetService{}
	h := NewDatasetHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ds-1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if svc.deletedID != "ds-1" {
		t.Fatalf("delete not forwarded: %s", svc.deletedID)
	}
}
