// Package analysis orchestrates the document analyzers into one unified,
// cacheable result record and derives insights and comparisons from it.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doculens/backend/pkg/cache"
	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/graph"
	"github.com/doculens/backend/pkg/logger"
	"github.com/doculens/backend/pkg/nlp"
	"github.com/doculens/backend/pkg/store"
	"github.com/doculens/backend/pkg/timeline"
)

var (
	// ErrNoText is returned when a document has no extracted text to analyze.
	ErrNoText = errors.New("document has no text content")
	// ErrNoAnalysis is returned when no completed analysis exists for a
	// document.
	ErrNoAnalysis = errors.New("no analysis found")
	// ErrNotAnalyzed is returned by Compare when either document has no
	// cached complete analysis.
	ErrNotAnalyzed = errors.New("one or both documents not analyzed")
)

const (
	sentimentChunkSize = 500
	keyPhraseTopN      = 10
)

// Engine coordinates the analyzers against one document's text. All
// collaborators are injected at construction; the engine itself is stateless
// and safe for concurrent use.
type Engine struct {
	store      store.Store
	cache      cache.Cache
	entities   nlp.EntityExtractor
	sentiment  nlp.SentimentAnalyzer
	classifier nlp.Classifier
}

// Params holds the collaborators an Engine runs against.
type Params struct {
	Store      store.Store
	Cache      cache.Cache
	Entities   nlp.EntityExtractor
	Sentiment  nlp.SentimentAnalyzer
	Classifier nlp.Classifier
}

// NewEngine creates an analysis engine.
func NewEngine(params Params) *Engine {
	return &Engine{
		store:      params.Store,
		cache:      params.Cache,
		entities:   params.Entities,
		sentiment:  params.Sentiment,
		classifier: params.Classifier,
	}
}

// Analyze runs the full analyzer pipeline for one document. Unless force is
// set, a cached complete result short-circuits every analyzer invocation.
// Analyzer and persistence failures are converted into a failed-status
// result; the document is marked failed and the run is not retried.
func (e *Engine) Analyze(ctx context.Context, documentID, text string, force bool) (*common.AnalysisResult, error) {
	if text == "" {
		return nil, ErrNoText
	}

	if !force {
		if cached := e.cachedAnalysis(ctx, documentID); cached != nil {
			logger.Info("[Analysis] Returning cached analysis", "document_id", documentID)
			return cached, nil
		}
	}

	logger.Info("[Analysis] Starting analysis", "document_id", documentID)

	result := &common.AnalysisResult{
		DocumentID: documentID,
		AnalyzedAt: time.Now().UTC(),
		Status:     common.StatusCompleted,
	}

	// Entity recognition, sentiment and classification only need the raw
	// text, so they run concurrently. Everything after depends on their
	// outputs and stays sequential.
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		entitySet, err := e.entities.ExtractEntities(gctx, text)
		if err != nil {
			return err
		}
		result.Entities = entitySet
		return nil
	})
	eg.Go(func() error {
		sentiment, err := e.sentiment.AnalyzeChunks(gctx, text, sentimentChunkSize)
		if err != nil {
			return err
		}
		result.Sentiment = sentiment
		return nil
	})
	eg.Go(func() error {
		classification, err := e.classifier.Classify(gctx, text)
		if err != nil {
			return err
		}
		result.Classification = classification
		return nil
	})
	if err := eg.Wait(); err != nil {
		return e.fail(ctx, documentID, err), nil
	}

	relationships, err := e.entities.ExtractRelationships(ctx, text)
	if err != nil {
		return e.fail(ctx, documentID, err), nil
	}
	result.Relationships = relationships

	kg := graph.Build(result.Entities.Entities, relationships).Data()
	result.KnowledgeGraph = &kg

	dates, err := e.entities.ExtractDates(ctx, text)
	if err != nil {
		return e.fail(ctx, documentID, err), nil
	}
	result.Dates = dates
	result.Timeline = timeline.Build(dates, result.Entities.Entities)

	keyPhrases, err := e.entities.ExtractKeyPhrases(ctx, text, keyPhraseTopN)
	if err != nil {
		return e.fail(ctx, documentID, err), nil
	}
	result.KeyPhrases = keyPhrases

	structure, err := e.classifier.DocumentStructure(ctx, text)
	if err != nil {
		return e.fail(ctx, documentID, err), nil
	}
	result.Structure = structure

	if result.Classification.Category != "" {
		metadata, err := e.classifier.ExtractMetadata(ctx, text, result.Classification.Category)
		if err != nil {
			return e.fail(ctx, documentID, err), nil
		}
		result.Metadata = metadata
	}

	stats := Statistics(text)
	result.Statistics = &stats

	if err := e.persist(ctx, result); err != nil {
		return e.fail(ctx, documentID, err), nil
	}

	e.cacheAnalysis(ctx, result)

	logger.Info("[Analysis] Analysis completed", "document_id", documentID)
	return result, nil
}

// persist writes the entity rows, appends the analysis record and marks the
// parent document completed. The store is the source of truth; the cache is
// written afterwards, best-effort.
func (e *Engine) persist(ctx context.Context, result *common.AnalysisResult) error {
	if result.Entities != nil && len(result.Entities.Entities) > 0 {
		if err := e.store.InsertEntities(ctx, result.DocumentID, result.Entities.Entities); err != nil {
			return err
		}
	}

	if err := e.store.InsertAnalysis(ctx, result); err != nil {
		return err
	}

	status := common.StatusCompleted
	analyzedAt := result.AnalyzedAt
	_, err := e.store.UpdateDocument(ctx, result.DocumentID, store.DocumentUpdate{
		AnalysisStatus: &status,
		AnalyzedAt:     &analyzedAt,
	})
	return err
}

// fail converts an analyzer or persistence error into a failed-status result
// and records the failure on the parent document. Nothing from the failed
// run is persisted as an analysis record.
func (e *Engine) fail(ctx context.Context, documentID string, cause error) *common.AnalysisResult {
	logger.Error("[Analysis] Analysis failed", "document_id", documentID, "err", cause)

	status := common.StatusFailed
	message := cause.Error()
	_, err := e.store.UpdateDocument(ctx, documentID, store.DocumentUpdate{
		AnalysisStatus: &status,
		AnalysisError:  &message,
	})
	if err != nil {
		logger.Error("[Analysis] Failed to record failure", "document_id", documentID, "err", err)
	}

	return &common.AnalysisResult{
		DocumentID: documentID,
		AnalyzedAt: time.Now().UTC(),
		Status:     common.StatusFailed,
		Error:      message,
	}
}

// cachedAnalysis reads a complete analysis from the cache, nil on miss or
// decode failure. Cache failures never propagate.
func (e *Engine) cachedAnalysis(ctx context.Context, documentID string) *common.AnalysisResult {
	payload, ok := e.cache.Get(ctx, cache.AnalysisKey(documentID, "complete"))
	if !ok {
		return nil
	}
	var result common.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		logger.Warn("[Analysis] Dropping undecodable cache entry", "document_id", documentID, "err", err)
		e.cache.Delete(ctx, cache.AnalysisKey(documentID, "complete"))
		return nil
	}
	return &result
}

func (e *Engine) cacheAnalysis(ctx context.Context, result *common.AnalysisResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		logger.Warn("[Analysis] Failed to marshal result for cache", "document_id", result.DocumentID, "err", err)
		return
	}
	e.cache.Set(ctx, cache.AnalysisKey(result.DocumentID, "complete"), payload, cache.AnalysisTTL)
}

// Result returns the completed analysis for one document and whether it was
// served from the cache. A store fallback is written back to the local cache;
// the server and worker run separate cache instances, so cache-only paths
// like Compare depend on reads warming the cache in their own process.
func (e *Engine) Result(ctx context.Context, documentID string) (*common.AnalysisResult, bool, error) {
	if cached := e.cachedAnalysis(ctx, documentID); cached != nil {
		return cached, true, nil
	}
	result, err := e.store.LatestAnalysis(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, ErrNoAnalysis
		}
		return nil, false, err
	}
	e.cacheAnalysis(ctx, result)
	return result, false, nil
}

// analysisForRead returns the completed analysis for read paths: cache
// preferred, persisted store as fallback.
func (e *Engine) analysisForRead(ctx context.Context, documentID string) (*common.AnalysisResult, error) {
	result, _, err := e.Result(ctx, documentID)
	return result, err
}
