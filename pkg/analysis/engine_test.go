package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/doculens/backend/pkg/cache"
	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/store"
)

// fakeCache is an in-memory cache.Cache without expiry.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := c.data[key]
	return value, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) bool {
	c.data[key] = value
	return true
}

func (c *fakeCache) Delete(_ context.Context, key string) bool {
	_, ok := c.data[key]
	delete(c.data, key)
	return ok
}

func (c *fakeCache) DeletePrefix(_ context.Context, prefix string) int {
	count := 0
	for key := range c.data {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.data, key)
			count++
		}
	}
	return count
}

func (c *fakeCache) Close() error { return nil }

// fakeStore records writes and serves canned reads.
type fakeStore struct {
	store.Store

	documents map[string]*common.Document
	updates   []store.DocumentUpdate
	analyses  map[string]*common.AnalysisResult
	entities  map[string][]common.Entity

	insertAnalysisErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		documents: make(map[string]*common.Document),
		analyses:  make(map[string]*common.AnalysisResult),
		entities:  make(map[string][]common.Entity),
	}
}

func (s *fakeStore) UpdateDocument(_ context.Context, id string, update store.DocumentUpdate) (bool, error) {
	s.updates = append(s.updates, update)
	_, ok := s.documents[id]
	return ok, nil
}

func (s *fakeStore) InsertEntities(_ context.Context, documentID string, entities []common.Entity) error {
	s.entities[documentID] = append(s.entities[documentID], entities...)
	return nil
}

func (s *fakeStore) InsertAnalysis(_ context.Context, result *common.AnalysisResult) error {
	if s.insertAnalysisErr != nil {
		return s.insertAnalysisErr
	}
	s.analyses[result.DocumentID] = result
	return nil
}

func (s *fakeStore) LatestAnalysis(_ context.Context, documentID string) (*common.AnalysisResult, error) {
	result, ok := s.analyses[documentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return result, nil
}

// fakeNLP implements nlp.EntityExtractor and nlp.SentimentAnalyzer with
// canned results.
type fakeNLP struct {
	entitySet *common.EntitySet
	sentiment *common.SentimentResult

	entitiesErr  error
	sentimentErr error

	entityCalls int
}

func (f *fakeNLP) ExtractEntities(_ context.Context, _ string) (*common.EntitySet, error) {
	f.entityCalls++
	if f.entitiesErr != nil {
		return nil, f.entitiesErr
	}
	if f.entitySet != nil {
		return f.entitySet, nil
	}
	return &common.EntitySet{
		Entities:      []common.Entity{{Text: "Acme", Label: "ORG", Start: 0, End: 4}},
		TotalEntities: 1,
		EntityCounts:  map[string]int{"ORG": 1},
		UniqueEntities: map[string][]string{
			"ORG": {"Acme"},
		},
		EntityTypes: []string{"ORG"},
	}, nil
}

func (f *fakeNLP) ExtractRelationships(_ context.Context, _ string) ([]common.Relationship, error) {
	return nil, nil
}

func (f *fakeNLP) ExtractDates(_ context.Context, _ string) ([]common.DateMention, error) {
	return []common.DateMention{{Text: "2024-01-01", Start: 10, End: 20}}, nil
}

func (f *fakeNLP) ExtractKeyPhrases(_ context.Context, _ string, _ int) ([]common.KeyPhrase, error) {
	return []common.KeyPhrase{{Text: "quarterly report", Root: "report", POS: "NOUN"}}, nil
}

func (f *fakeNLP) AnalyzeChunks(_ context.Context, _ string, _ int) (*common.SentimentResult, error) {
	if f.sentimentErr != nil {
		return nil, f.sentimentErr
	}
	if f.sentiment != nil {
		return f.sentiment, nil
	}
	return &common.SentimentResult{
		OverallSentiment: "positive",
		AverageScore:     0.8,
		PositiveChunks:   2,
		TotalChunks:      2,
	}, nil
}

// fakeClassifier implements nlp.Classifier.
type fakeClassifier struct {
	classification *common.Classification
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (*common.Classification, error) {
	if f.classification != nil {
		return f.classification, nil
	}
	return &common.Classification{Category: "report", Confidence: 0.9}, nil
}

func (f *fakeClassifier) ExtractMetadata(_ context.Context, _ string, _ string) (*common.Metadata, error) {
	return &common.Metadata{}, nil
}

func (f *fakeClassifier) DocumentStructure(_ context.Context, _ string) (*common.StructureInfo, error) {
	return &common.StructureInfo{TotalLines: 3, NonEmptyLines: 3}, nil
}

func newTestEngine(s *fakeStore, c *fakeCache, n *fakeNLP) *Engine {
	return NewEngine(Params{
		Store:      s,
		Cache:      c,
		Entities:   n,
		Sentiment:  n,
		Classifier: &fakeClassifier{},
	})
}

func TestAnalyzeEmptyText(t *testing.T) {
	engine := newTestEngine(newFakeStore(), newFakeCache(), &fakeNLP{})

	_, err := engine.Analyze(context.Background(), "doc1", "", false)
	if !errors.Is(err, ErrNoText) {
		t.Errorf("Analyze with empty text: err = %v, want ErrNoText", err)
	}
}

func TestAnalyzeCompletesAndPersists(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	engine := newTestEngine(fs, fc, &fakeNLP{})

	result, err := engine.Analyze(context.Background(), "doc1", "Acme shipped in 2024-01-01.", false)
	if err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}

	if result.Status != common.StatusCompleted {
		t.Errorf("Status = %q, want %q", result.Status, common.StatusCompleted)
	}
	if result.Entities == nil || result.Entities.TotalEntities != 1 {
		t.Errorf("Entities = %#v, want one entity", result.Entities)
	}
	if result.KnowledgeGraph == nil {
		t.Error("KnowledgeGraph = nil, want populated")
	}
	if len(result.Timeline) != 1 {
		t.Errorf("len(Timeline) = %d, want 1", len(result.Timeline))
	}
	if result.Statistics == nil || result.Statistics.TotalWords == 0 {
		t.Errorf("Statistics = %#v, want word counts", result.Statistics)
	}

	// Persisted and cached.
	if _, ok := fs.analyses["doc1"]; !ok {
		t.Error("analysis record not persisted")
	}
	if len(fs.entities["doc1"]) != 1 {
		t.Errorf("persisted entities = %d, want 1", len(fs.entities["doc1"]))
	}
	if _, ok := fc.data[cache.AnalysisKey("doc1", "complete")]; !ok {
		t.Error("analysis not cached")
	}

	// The document must be marked completed with a timestamp.
	if len(fs.updates) != 1 {
		t.Fatalf("document updates = %d, want 1", len(fs.updates))
	}
	update := fs.updates[0]
	if update.AnalysisStatus == nil || *update.AnalysisStatus != common.StatusCompleted {
		t.Errorf("AnalysisStatus update = %v, want completed", update.AnalysisStatus)
	}
	if update.AnalyzedAt == nil {
		t.Error("AnalyzedAt update = nil, want set")
	}
}

func TestAnalyzeServesCachedResult(t *testing.T) {
	fc := newFakeCache()
	nlpFake := &fakeNLP{}
	engine := newTestEngine(newFakeStore(), fc, nlpFake)

	cached := &common.AnalysisResult{DocumentID: "doc1", Status: common.StatusCompleted}
	payload, _ := json.Marshal(cached)
	fc.data[cache.AnalysisKey("doc1", "complete")] = payload

	result, err := engine.Analyze(context.Background(), "doc1", "some text", false)
	if err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}
	if result.DocumentID != "doc1" || result.Status != common.StatusCompleted {
		t.Errorf("result = %#v, want cached record", result)
	}
	if nlpFake.entityCalls != 0 {
		t.Errorf("entity extractor called %d times, want 0 on cache hit", nlpFake.entityCalls)
	}
}

func TestAnalyzeForceBypassesCache(t *testing.T) {
	fc := newFakeCache()
	nlpFake := &fakeNLP{}
	engine := newTestEngine(newFakeStore(), fc, nlpFake)

	stale := &common.AnalysisResult{DocumentID: "doc1", Status: common.StatusCompleted}
	payload, _ := json.Marshal(stale)
	fc.data[cache.AnalysisKey("doc1", "complete")] = payload

	_, err := engine.Analyze(context.Background(), "doc1", "fresh text", true)
	if err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}
	if nlpFake.entityCalls != 1 {
		t.Errorf("entity extractor called %d times, want 1 with force", nlpFake.entityCalls)
	}
}

func TestAnalyzeAnalyzerFailureMarksDocumentFailed(t *testing.T) {
	fs := newFakeStore()
	nlpFake := &fakeNLP{entitiesErr: errors.New("model service down")}
	engine := newTestEngine(fs, newFakeCache(), nlpFake)

	result, err := engine.Analyze(context.Background(), "doc1", "some text", false)
	if err != nil {
		t.Fatalf("Analyze() err = %v, want failure folded into result", err)
	}
	if result.Status != common.StatusFailed {
		t.Errorf("Status = %q, want %q", result.Status, common.StatusFailed)
	}
	if result.Error != "model service down" {
		t.Errorf("Error = %q, want analyzer message", result.Error)
	}

	if len(fs.updates) != 1 {
		t.Fatalf("document updates = %d, want 1", len(fs.updates))
	}
	update := fs.updates[0]
	if update.AnalysisStatus == nil || *update.AnalysisStatus != common.StatusFailed {
		t.Errorf("AnalysisStatus update = %v, want failed", update.AnalysisStatus)
	}
	if update.AnalysisError == nil || *update.AnalysisError != "model service down" {
		t.Errorf("AnalysisError update = %v, want analyzer message", update.AnalysisError)
	}

	// Nothing from the failed run is persisted.
	if len(fs.analyses) != 0 {
		t.Errorf("persisted analyses = %d, want 0", len(fs.analyses))
	}
}

func TestAnalyzePersistenceFailureMarksDocumentFailed(t *testing.T) {
	fs := newFakeStore()
	fs.insertAnalysisErr = errors.New("db unavailable")
	fc := newFakeCache()
	engine := newTestEngine(fs, fc, &fakeNLP{})

	result, err := engine.Analyze(context.Background(), "doc1", "some text", false)
	if err != nil {
		t.Fatalf("Analyze() err = %v, want failure folded into result", err)
	}
	if result.Status != common.StatusFailed {
		t.Errorf("Status = %q, want %q", result.Status, common.StatusFailed)
	}
	if _, ok := fc.data[cache.AnalysisKey("doc1", "complete")]; ok {
		t.Error("failed run must not be cached")
	}
}

func TestResult(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	engine := newTestEngine(fs, fc, &fakeNLP{})
	ctx := context.Background()

	if _, _, err := engine.Result(ctx, "missing"); !errors.Is(err, ErrNoAnalysis) {
		t.Errorf("Result for unknown document: err = %v, want ErrNoAnalysis", err)
	}

	fs.analyses["doc1"] = &common.AnalysisResult{DocumentID: "doc1", Status: common.StatusCompleted}
	result, cached, err := engine.Result(ctx, "doc1")
	if err != nil {
		t.Fatalf("Result() err = %v", err)
	}
	if cached {
		t.Error("cached = true, want false for store read")
	}
	if result.DocumentID != "doc1" {
		t.Errorf("DocumentID = %q, want doc1", result.DocumentID)
	}
	// The store fallback must land in the cache for later cache-only reads.
	if _, ok := fc.data[cache.AnalysisKey("doc1", "complete")]; !ok {
		t.Error("store fallback not written back to cache")
	}

	payload, _ := json.Marshal(&common.AnalysisResult{DocumentID: "doc2", Status: common.StatusCompleted})
	fc.data[cache.AnalysisKey("doc2", "complete")] = payload
	_, cached, err = engine.Result(ctx, "doc2")
	if err != nil {
		t.Fatalf("Result() err = %v", err)
	}
	if !cached {
		t.Error("cached = false, want true for cache hit")
	}
}

func TestResultDropsUndecodableCacheEntry(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	engine := newTestEngine(fs, fc, &fakeNLP{})

	fc.data[cache.AnalysisKey("doc1", "complete")] = []byte("{not json")
	fs.analyses["doc1"] = &common.AnalysisResult{DocumentID: "doc1", Status: common.StatusCompleted}

	result, cached, err := engine.Result(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("Result() err = %v", err)
	}
	if cached {
		t.Error("cached = true, want false after dropping bad entry")
	}
	if result.DocumentID != "doc1" {
		t.Errorf("DocumentID = %q, want doc1", result.DocumentID)
	}

	// The bad entry is replaced by the store record.
	payload, ok := fc.data[cache.AnalysisKey("doc1", "complete")]
	if !ok {
		t.Fatal("cache entry not rewritten from store")
	}
	var rewritten common.AnalysisResult
	if err := json.Unmarshal(payload, &rewritten); err != nil {
		t.Fatalf("rewritten cache entry does not decode: %v", err)
	}
	if rewritten.DocumentID != "doc1" {
		t.Errorf("rewritten DocumentID = %q, want doc1", rewritten.DocumentID)
	}
}
