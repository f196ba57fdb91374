package common

import "time"

// Entity represents a span of text recognized as a named thing (person,
// organization, location, date, ...) with a type tag. Entity identity within
// one document's analysis is the Text value: two mentions with identical text
// are the same graph node even when they occur at different offsets.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Relationship is a directed (subject, relation, object) triple connecting
// two entities by their text values.
type Relationship struct {
	Subject  string `json:"subject"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
	Sentence string `json:"sentence,omitempty"`
}

// DateMention is a date expression found in the document text, with its
// character span. The text is kept as extracted, never parsed.
type DateMention struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// KeyPhrase is a noun phrase extracted from the text.
type KeyPhrase struct {
	Text string `json:"text"`
	Root string `json:"root"`
	POS  string `json:"pos"`
}

// TimelineEntry is one dated event on the document timeline. Ordering of a
// timeline is ascending by Position (character offset of the date in the
// text), not by calendar value.
type TimelineEntry struct {
	Date            string   `json:"date"`
	Position        int      `json:"position"`
	RelatedEntities []string `json:"related_entities"`
	Context         string   `json:"context"`
}

// EntitySet is the full output of entity recognition over one document.
type EntitySet struct {
	Entities       []Entity            `json:"entities"`
	TotalEntities  int                 `json:"total_entities"`
	EntityCounts   map[string]int      `json:"entity_counts"`
	UniqueEntities map[string][]string `json:"unique_entities"`
	EntityTypes    []string            `json:"entity_types"`
}

// SentimentResult aggregates chunked sentiment analysis over one document.
type SentimentResult struct {
	OverallSentiment string   `json:"overall_sentiment"`
	AverageScore     float64  `json:"average_score"`
	PositiveChunks   int      `json:"positive_chunks"`
	NegativeChunks   int      `json:"negative_chunks"`
	NeutralChunks    int      `json:"neutral_chunks"`
	TotalChunks      int      `json:"total_chunks"`
	ChunkSentiments  []string `json:"chunk_sentiments,omitempty"`
}

// Classification is the document type prediction with per-category scores.
type Classification struct {
	Category      string             `json:"category"`
	Confidence    float64            `json:"confidence"`
	Scores        map[string]float64 `json:"scores"`
	AllCategories []string           `json:"all_categories,omitempty"`
}

// Metadata holds category-specific fields pulled from the text (invoice
// numbers, contract parties, receipt totals, ...).
type Metadata struct {
	Category        string              `json:"category"`
	ExtractedFields map[string][]string `json:"extracted_fields"`
}

// StructureInfo describes the layout of the document text.
type StructureInfo struct {
	TotalLines        int     `json:"total_lines"`
	NonEmptyLines     int     `json:"non_empty_lines"`
	AverageLineLength float64 `json:"average_line_length"`
	HasHeaders        bool    `json:"has_headers"`
	HasTables         bool    `json:"has_tables"`
	HasLists          bool    `json:"has_lists"`
}

// TextStatistics holds deterministic counts over the raw text. Sentences are
// split on the literal "." which undercounts real boundaries; this is part of
// the statistics contract and must stay stable across re-runs.
type TextStatistics struct {
	TotalCharacters    int     `json:"total_characters"`
	TotalWords         int     `json:"total_words"`
	TotalSentences     int     `json:"total_sentences"`
	AvgWordLength      float64 `json:"avg_word_length"`
	AvgSentenceLength  float64 `json:"avg_sentence_length"`
	UniqueWords        int     `json:"unique_words"`
	VocabularyRichness float64 `json:"vocabulary_richness"`
}

// Analysis status values. A document moves pending -> processing ->
// completed | failed. Failed runs are never retried automatically.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// AnalysisResult is the unified record of all analyzer outputs for one
// document. One document has at most one current complete result; re-analysis
// overwrites the cached copy and appends a new persisted record.
type AnalysisResult struct {
	DocumentID     string           `json:"document_id"`
	AnalyzedAt     time.Time        `json:"analyzed_at"`
	Status         string           `json:"status"`
	Error          string           `json:"error,omitempty"`
	Entities       *EntitySet       `json:"entities,omitempty"`
	Sentiment      *SentimentResult `json:"sentiment,omitempty"`
	Classification *Classification  `json:"classification,omitempty"`
	Relationships  []Relationship   `json:"relationships,omitempty"`
	KnowledgeGraph *GraphData       `json:"knowledge_graph,omitempty"`
	Dates          []DateMention    `json:"dates,omitempty"`
	Timeline       []TimelineEntry  `json:"timeline,omitempty"`
	KeyPhrases     []KeyPhrase      `json:"key_phrases,omitempty"`
	Structure      *StructureInfo   `json:"structure,omitempty"`
	Metadata       *Metadata        `json:"extracted_metadata,omitempty"`
	Statistics     *TextStatistics  `json:"statistics,omitempty"`
	OCRConfidence  float64          `json:"ocr_confidence,omitempty"`
}

// GraphNode is one node of the serialized knowledge graph. Size is a
// visualization hint derived from the node degree.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Size  int    `json:"size"`
}

// GraphEdge is one directed edge of the serialized knowledge graph.
type GraphEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	Label    string `json:"label"`
}

// GraphStatistics summarizes the structure of a built knowledge graph.
type GraphStatistics struct {
	TotalNodes  int            `json:"total_nodes"`
	TotalEdges  int            `json:"total_edges"`
	EntityTypes map[string]int `json:"entity_types"`
	Density     float64        `json:"density"`
	IsConnected bool           `json:"is_connected"`
}

// GraphData is the persisted/serialized form of a knowledge graph. Error is
// set when construction degraded to an empty graph instead of raising.
type GraphData struct {
	Nodes      []GraphNode      `json:"nodes"`
	Edges      []GraphEdge      `json:"edges"`
	Statistics *GraphStatistics `json:"statistics,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Insights are derived from an AnalysisResult on demand and never persisted.
type Insights struct {
	DocumentID      string   `json:"document_id"`
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"key_findings"`
	Recommendations []string `json:"recommendations"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// Comparison is the result of comparing two completed analyses.
type Comparison struct {
	Document1       string   `json:"document_1"`
	Document2       string   `json:"document_2"`
	Similarities    []string `json:"similarities"`
	Differences     []string `json:"differences"`
	SharedEntities  []string `json:"shared_entities"`
	UniqueEntities1 []string `json:"unique_entities_1"`
	UniqueEntities2 []string `json:"unique_entities_2"`
}

// Document is the stored upload record. TextContent is the extracted text all
// analyzers run against.
type Document struct {
	ID             string         `json:"id"`
	Filename       string         `json:"filename"`
	StoredKey      string         `json:"stored_key"`
	FileType       string         `json:"file_type"`
	FileSize       int64          `json:"file_size"`
	TextContent    string         `json:"text_content,omitempty"`
	RequiresOCR    bool           `json:"requires_ocr"`
	DocumentHash   string         `json:"document_hash,omitempty"`
	UploadDate     time.Time      `json:"upload_date"`
	Status         string         `json:"status"`
	AnalysisStatus string         `json:"analysis_status"`
	AnalysisError  string         `json:"analysis_error,omitempty"`
	AnalyzedAt     *time.Time     `json:"analyzed_at,omitempty"`
}
