// Package store defines the persisted document store the pipeline writes to.
// The store is authoritative; the cache in pkg/cache is only an optimization
// on top of it.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/doculens/backend/pkg/common"
)

// ErrNotFound is returned when a document or analysis record is absent.
var ErrNotFound = errors.New("record not found")

// Entity is one persisted entity row linked to a document.
type Entity struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Text       string    `json:"entity_text"`
	Type       string    `json:"entity_type"`
	Start      int       `json:"start_pos"`
	End        int       `json:"end_pos"`
	CreatedAt  time.Time `json:"created_at"`
}

// TypeCount is one bucket of the count-by-type aggregation.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Statistics summarizes the whole store.
type Statistics struct {
	TotalDocuments int         `json:"total_documents"`
	TotalEntities  int         `json:"total_entities"`
	TotalAnalyses  int         `json:"total_analyses"`
	DocumentTypes  []TypeCount `json:"document_types"`
}

// DocumentUpdate carries the mutable analysis-state fields of a document.
// Nil fields are left untouched.
type DocumentUpdate struct {
	Status         *string
	AnalysisStatus *string
	AnalysisError  *string
	AnalyzedAt     *time.Time
}

// Store is the persisted document/entity/analysis store.
type Store interface {
	InsertDocument(ctx context.Context, doc *common.Document) (string, error)
	GetDocument(ctx context.Context, id string) (*common.Document, error)
	ListDocuments(ctx context.Context, skip, limit int) ([]common.Document, error)
	UpdateDocument(ctx context.Context, id string, update DocumentUpdate) (bool, error)
	DeleteDocument(ctx context.Context, id string) (bool, error)
	SearchDocuments(ctx context.Context, query string, limit int) ([]common.Document, error)

	InsertEntities(ctx context.Context, documentID string, entities []common.Entity) error
	EntitiesByDocument(ctx context.Context, documentID string) ([]Entity, error)
	EntitiesByType(ctx context.Context, documentID, entityType string) ([]Entity, error)

	// InsertAnalysis appends a new analysis record. History is kept as-is;
	// re-analysis never overwrites or deduplicates earlier records.
	InsertAnalysis(ctx context.Context, result *common.AnalysisResult) error
	LatestAnalysis(ctx context.Context, documentID string) (*common.AnalysisResult, error)

	Stats(ctx context.Context) (*Statistics, error)
}
