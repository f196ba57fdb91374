package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/doculens/backend/internal/server/middleware"
	"github.com/doculens/backend/internal/storage"
	"github.com/doculens/backend/internal/util"
	"github.com/doculens/backend/pkg/cache"
	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/extract"
	"github.com/doculens/backend/pkg/logger"
	"github.com/doculens/backend/pkg/store"
)

const (
	maxUploadSize = 50 * 1024 * 1024
	maxBatchFiles = 10
)

type uploadResult struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	RequiresOCR bool   `json:"requires_ocr"`
	Status      string `json:"status"`
}

// UploadDocumentHandler accepts one multipart file, extracts its text, stores
// the original bytes in object storage and the record in Postgres.
func UploadDocumentHandler(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing file"})
	}

	result, err := processUpload(c, fileHeader)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
		}
		logger.Error("[Upload] Upload failed", "filename", fileHeader.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Upload failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Document uploaded successfully",
		"data":    result,
	})
}

// UploadBatchHandler accepts up to 10 files; per-file failures are reported
// inline without failing the batch.
func UploadBatchHandler(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid multipart form"})
	}
	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing files"})
	}
	if len(files) > maxBatchFiles {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Maximum 10 files per batch"})
	}

	type batchEntry struct {
		Filename   string `json:"filename"`
		Success    bool   `json:"success"`
		DocumentID string `json:"document_id,omitempty"`
		Error      string `json:"error,omitempty"`
	}

	results := make([]batchEntry, 0, len(files))
	for _, fileHeader := range files {
		result, err := processUpload(c, fileHeader)
		if err != nil {
			message := "Upload failed"
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				if s, ok := httpErr.Message.(string); ok {
					message = s
				}
			} else {
				logger.Error("[Upload] Batch item failed", "filename", fileHeader.Filename, "err", err)
			}
			results = append(results, batchEntry{Filename: fileHeader.Filename, Success: false, Error: message})
			continue
		}
		results = append(results, batchEntry{
			Filename:   fileHeader.Filename,
			Success:    true,
			DocumentID: result.DocumentID,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"results": results,
	})
}

func processUpload(c echo.Context, fileHeader *multipart.FileHeader) (*uploadResult, error) {
	if fileHeader.Size > maxUploadSize {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "File exceeds maximum size")
	}
	if !extract.Supported(fileHeader.Filename) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Unsupported file type")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	extracted, err := extract.Extract(ctx, fileHeader.Filename, content)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Unsupported file type")
		}
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	storedKey, err := storage.PutDocument(ctx, app.S3, id, fileHeader.Filename, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	doc := &common.Document{
		ID:             id,
		Filename:       fileHeader.Filename,
		StoredKey:      storedKey,
		FileType:       extracted.FileType,
		FileSize:       extracted.FileSize,
		TextContent:    util.SanitizePostgresText(extracted.Text),
		RequiresOCR:    extracted.RequiresOCR,
		DocumentHash:   extracted.Hash,
		UploadDate:     time.Now().UTC(),
		Status:         "uploaded",
		AnalysisStatus: common.StatusPending,
	}
	if _, err := app.Store.InsertDocument(ctx, doc); err != nil {
		if delErr := storage.DeleteDocument(ctx, app.S3, storedKey); delErr != nil {
			logger.Warn("[Upload] Failed to remove orphaned object", "key", storedKey, "err", delErr)
		}
		return nil, err
	}

	return &uploadResult{
		DocumentID:  id,
		Filename:    doc.Filename,
		FileType:    doc.FileType,
		FileSize:    doc.FileSize,
		RequiresOCR: doc.RequiresOCR,
		Status:      doc.Status,
	}, nil
}

// ListDocumentsHandler returns documents newest first, paginated via skip and
// limit query params.
func ListDocumentsHandler(c echo.Context) error {
	type listParams struct {
		Skip  int `query:"skip"`
		Limit int `query:"limit"`
	}

	params := new(listParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if params.Limit <= 0 {
		params.Limit = 50
	}
	if params.Skip < 0 {
		params.Skip = 0
	}

	app := c.(*middleware.AppContext).App
	documents, err := app.Store.ListDocuments(c.Request().Context(), params.Skip, params.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve documents"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"documents": documents,
			"total":     len(documents),
			"skip":      params.Skip,
			"limit":     params.Limit,
		},
	})
}

// GetDocumentHandler returns one document record, cache-first.
func GetDocumentHandler(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if payload, ok := app.Cache.Get(ctx, cache.DocumentKey(id)); ok {
		var doc common.Document
		if err := json.Unmarshal(payload, &doc); err == nil {
			return c.JSON(http.StatusOK, echo.Map{
				"success": true,
				"data":    doc,
				"cached":  true,
			})
		}
		app.Cache.Delete(ctx, cache.DocumentKey(id))
	}

	doc, err := app.Store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve document"})
	}

	if payload, err := json.Marshal(doc); err == nil {
		app.Cache.Set(ctx, cache.DocumentKey(id), payload, cache.DocumentTTL)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    doc,
		"cached":  false,
	})
}

// DeleteDocumentHandler removes the stored object, the database rows and any
// cached copies of one document.
func DeleteDocumentHandler(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	doc, err := app.Store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete document"})
	}

	if doc.StoredKey != "" {
		if err := storage.DeleteDocument(ctx, app.S3, doc.StoredKey); err != nil {
			logger.Warn("[Documents] Failed to delete stored object", "document_id", id, "err", err)
		}
	}

	deleted, err := app.Store.DeleteDocument(ctx, id)
	if err != nil || !deleted {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete document"})
	}

	app.Cache.Delete(ctx, cache.DocumentKey(id))
	app.Cache.DeletePrefix(ctx, cache.AnalysisPrefix(id))

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     "Document deleted successfully",
		"document_id": id,
	})
}

// DownloadDocumentHandler returns a short-lived presigned URL for the
// original file.
func DownloadDocumentHandler(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	doc, err := app.Store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve document"})
	}
	if doc.StoredKey == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Document has no stored file"})
	}

	url, err := storage.GenerateDownloadLink(ctx, app.S3, doc.StoredKey)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate download link"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"document_id": id,
			"url":         url,
		},
	})
}

// GetStatisticsHandler returns store-wide totals.
func GetStatisticsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	stats, err := app.Store.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get statistics"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    stats,
	})
}
