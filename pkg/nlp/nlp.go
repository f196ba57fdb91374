// Package nlp defines the analyzer collaborator interfaces the orchestration
// pipeline runs against. Implementations are black boxes: remote model
// services or local rule-based analyzers, substitutable with fakes in tests.
package nlp

import (
	"context"

	"github.com/doculens/backend/pkg/common"
)

// EntityExtractor recognizes named entities, relationships, dates and key
// phrases in raw text.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) (*common.EntitySet, error)
	ExtractRelationships(ctx context.Context, text string) ([]common.Relationship, error)
	ExtractDates(ctx context.Context, text string) ([]common.DateMention, error)
	ExtractKeyPhrases(ctx context.Context, text string, topN int) ([]common.KeyPhrase, error)
}

// SentimentAnalyzer scores the sentiment of text chunk by chunk and
// aggregates the result.
type SentimentAnalyzer interface {
	AnalyzeChunks(ctx context.Context, text string, chunkSize int) (*common.SentimentResult, error)
}

// Classifier predicts a document category, extracts category-specific
// metadata and describes the document structure.
type Classifier interface {
	Classify(ctx context.Context, text string) (*common.Classification, error)
	ExtractMetadata(ctx context.Context, text string, category string) (*common.Metadata, error)
	DocumentStructure(ctx context.Context, text string) (*common.StructureInfo, error)
}
