package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/store"
)

const insertDocumentSQL = `
INSERT INTO documents (
	id, filename, stored_key, file_type, file_size, text_content,
	requires_ocr, document_hash, upload_date, status, analysis_status
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`

// InsertDocument stores a new document record and returns its ID. A pre-set
// ID is kept so callers can derive dependent keys before the insert; otherwise
// one is generated.
func (s *DocumentStore) InsertDocument(ctx context.Context, doc *common.Document) (string, error) {
	id := doc.ID
	if id == "" {
		generated, err := gonanoid.New()
		if err != nil {
			return "", err
		}
		id = generated
	}

	_, err := s.conn.Exec(ctx, insertDocumentSQL,
		id, doc.Filename, doc.StoredKey, doc.FileType, doc.FileSize, doc.TextContent,
		doc.RequiresOCR, doc.DocumentHash, doc.UploadDate, doc.Status, doc.AnalysisStatus,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	return id, nil
}

const selectDocumentSQL = `
SELECT id, filename, stored_key, file_type, file_size, text_content,
       requires_ocr, document_hash, upload_date, status, analysis_status,
       COALESCE(analysis_error, ''), analyzed_at
FROM documents
WHERE id = $1;
`

// GetDocument fetches one document by ID, store.ErrNotFound when absent.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*common.Document, error) {
	row := s.conn.QueryRow(ctx, selectDocumentSQL, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

const listDocumentsSQL = `
SELECT id, filename, stored_key, file_type, file_size, text_content,
       requires_ocr, document_hash, upload_date, status, analysis_status,
       COALESCE(analysis_error, ''), analyzed_at
FROM documents
ORDER BY upload_date DESC
OFFSET $1 LIMIT $2;
`

// ListDocuments returns documents newest first, paginated.
func (s *DocumentStore) ListDocuments(ctx context.Context, skip, limit int) ([]common.Document, error) {
	rows, err := s.conn.Query(ctx, listDocumentsSQL, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// UpdateDocument applies the non-nil fields of update to one document.
// Returns false when no row matched.
func (s *DocumentStore) UpdateDocument(ctx context.Context, id string, update store.DocumentUpdate) (bool, error) {
	sql := "UPDATE documents SET "
	args := []any{id}
	set := ""

	appendSet := func(column string, value any) {
		args = append(args, value)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", column, len(args))
	}

	if update.Status != nil {
		appendSet("status", *update.Status)
	}
	if update.AnalysisStatus != nil {
		appendSet("analysis_status", *update.AnalysisStatus)
	}
	if update.AnalysisError != nil {
		appendSet("analysis_error", *update.AnalysisError)
	}
	if update.AnalyzedAt != nil {
		appendSet("analyzed_at", *update.AnalyzedAt)
	}
	if set == "" {
		return false, nil
	}

	tag, err := s.conn.Exec(ctx, sql+set+" WHERE id = $1", args...)
	if err != nil {
		return false, fmt.Errorf("failed to update document: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteDocument removes a document and its dependent entity and analysis
// rows.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) (bool, error) {
	tag, err := s.conn.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const searchDocumentsSQL = `
SELECT id, filename, stored_key, file_type, file_size, text_content,
       requires_ocr, document_hash, upload_date, status, analysis_status,
       COALESCE(analysis_error, ''), analyzed_at
FROM documents
WHERE text_search @@ plainto_tsquery('english', $1)
ORDER BY ts_rank(text_search, plainto_tsquery('english', $1)) DESC
LIMIT $2;
`

// SearchDocuments runs a ranked full-text search over extracted text.
func (s *DocumentStore) SearchDocuments(ctx context.Context, query string, limit int) ([]common.Document, error) {
	rows, err := s.conn.Query(ctx, searchDocumentsSQL, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func scanDocument(row pgx.Row) (*common.Document, error) {
	var doc common.Document
	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.StoredKey, &doc.FileType, &doc.FileSize,
		&doc.TextContent, &doc.RequiresOCR, &doc.DocumentHash, &doc.UploadDate,
		&doc.Status, &doc.AnalysisStatus, &doc.AnalysisError, &doc.AnalyzedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows pgx.Rows) ([]common.Document, error) {
	docs := make([]common.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}
