package analysis

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/doculens/backend/pkg/common"
)

func fullAnalysisResult() *common.AnalysisResult {
	return &common.AnalysisResult{
		DocumentID: "doc1",
		Status:     common.StatusCompleted,
		Classification: &common.Classification{
			Category:   "invoice",
			Confidence: 0.85,
		},
		Sentiment: &common.SentimentResult{
			OverallSentiment: "negative",
			AverageScore:     0.6,
			PositiveChunks:   1,
			TotalChunks:      4,
		},
		Entities: &common.EntitySet{
			Entities: []common.Entity{
				{Text: "Alice", Label: "PERSON"},
				{Text: "Acme", Label: "ORG"},
				{Text: "Bob", Label: "PERSON"},
			},
			TotalEntities: 3,
			EntityCounts:  map[string]int{"PERSON": 2, "ORG": 1},
			EntityTypes:   []string{"PERSON", "ORG"},
		},
		Structure: &common.StructureInfo{
			HasTables: true,
			HasLists:  true,
		},
		Dates: []common.DateMention{
			{Text: "2024-01-01", Start: 0, End: 10},
			{Text: "2024-02-01", Start: 50, End: 60},
		},
		Statistics: &common.TextStatistics{TotalWords: 120},
	}
}

func TestGenerateSummary(t *testing.T) {
	got := generateSummary(fullAnalysisResult())
	want := "This appears to be a invoice document (confidence: 85.00%). " +
		"The overall sentiment is negative. " +
		"The document contains 3 entities across 2 different types. " +
		"The document has approximately 120 words."
	if got != want {
		t.Errorf("generateSummary() = %q, want %q", got, want)
	}
}

func TestGenerateSummaryOmitsMissingFacets(t *testing.T) {
	result := &common.AnalysisResult{
		Statistics: &common.TextStatistics{TotalWords: 10},
	}
	got := generateSummary(result)
	want := "The document has approximately 10 words."
	if got != want {
		t.Errorf("generateSummary() = %q, want %q", got, want)
	}

	if got := generateSummary(&common.AnalysisResult{}); got != "" {
		t.Errorf("generateSummary(empty) = %q, want empty", got)
	}
}

func TestExtractKeyFindings(t *testing.T) {
	got := extractKeyFindings(fullAnalysisResult())
	want := []string{
		"Most frequent entity type: PERSON (2 occurrences)",
		"25.0% of the content has positive sentiment",
		"Document contains structured tables",
		"Document contains lists or enumerated items",
		"Document references 2 specific dates",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractKeyFindings() = %#v, want %#v", got, want)
	}
}

func TestExtractKeyFindingsEmptyResult(t *testing.T) {
	got := extractKeyFindings(&common.AnalysisResult{})
	if !reflect.DeepEqual(got, []string{}) {
		t.Errorf("extractKeyFindings(empty) = %#v, want []", got)
	}
}

func TestGenerateRecommendations(t *testing.T) {
	tests := []struct {
		name   string
		result *common.AnalysisResult
		want   []string
	}{
		{
			name: "invoice with negative sentiment and entities",
			result: &common.AnalysisResult{
				Classification: &common.Classification{Category: "invoice"},
				Sentiment:      &common.SentimentResult{OverallSentiment: "negative"},
				Entities: &common.EntitySet{
					EntityTypes: []string{"PERSON", "ORG"},
				},
			},
			want: []string{
				"Review payment terms and due dates",
				"Verify amounts and line items",
				"Pay attention to concerns or issues raised in the document",
				"Review mentions of key individuals",
				"Verify organizational relationships",
			},
		},
		{
			name: "contract",
			result: &common.AnalysisResult{
				Classification: &common.Classification{Category: "contract"},
			},
			want: []string{
				"Review all terms and conditions carefully",
				"Check effective dates and renewal clauses",
			},
		},
		{
			name:   "nothing triggered",
			result: &common.AnalysisResult{},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateRecommendations(tt.result)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("generateRecommendations() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name   string
		result *common.AnalysisResult
		want   float64
	}{
		{
			name: "all three sources",
			result: &common.AnalysisResult{
				Classification: &common.Classification{Confidence: 0.9},
				Sentiment:      &common.SentimentResult{AverageScore: 0.6},
				OCRConfidence:  0.3,
			},
			want: 0.6,
		},
		{
			name: "single source",
			result: &common.AnalysisResult{
				Classification: &common.Classification{Confidence: 0.8},
			},
			want: 0.8,
		},
		{
			name:   "no sources falls back to neutral",
			result: &common.AnalysisResult{},
			want:   0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidenceScore(tt.result)
			if got != tt.want {
				t.Errorf("confidenceScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsightsRequiresAnalysis(t *testing.T) {
	engine := newTestEngine(newFakeStore(), newFakeCache(), &fakeNLP{})

	_, err := engine.Insights(context.Background(), "missing")
	if !errors.Is(err, ErrNoAnalysis) {
		t.Errorf("Insights for unknown document: err = %v, want ErrNoAnalysis", err)
	}
}

func TestInsightsFromStoredAnalysis(t *testing.T) {
	fs := newFakeStore()
	fs.analyses["doc1"] = fullAnalysisResult()
	engine := newTestEngine(fs, newFakeCache(), &fakeNLP{})

	insights, err := engine.Insights(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("Insights() err = %v", err)
	}
	if insights.DocumentID != "doc1" {
		t.Errorf("DocumentID = %q, want doc1", insights.DocumentID)
	}
	if insights.Summary == "" {
		t.Error("Summary is empty, want populated")
	}
	if len(insights.KeyFindings) == 0 {
		t.Error("KeyFindings is empty, want populated")
	}
	wantScore := (0.85 + 0.6) / 2
	if insights.ConfidenceScore != wantScore {
		t.Errorf("ConfidenceScore = %v, want %v", insights.ConfidenceScore, wantScore)
	}
}
