package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/doculens/backend/pkg/common"
)

// Insights derives the natural-language summary, key findings,
// recommendations and confidence score from the latest completed analysis.
// Insights are recomputed on demand and never persisted.
func (e *Engine) Insights(ctx context.Context, documentID string) (*common.Insights, error) {
	result, err := e.analysisForRead(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return &common.Insights{
		DocumentID:      documentID,
		Summary:         generateSummary(result),
		KeyFindings:     extractKeyFindings(result),
		Recommendations: generateRecommendations(result),
		ConfidenceScore: confidenceScore(result),
	}, nil
}

// generateSummary concatenates fixed-template sentences, one per analysis
// facet that is present. Missing facets omit their sentence; there are no
// placeholders.
func generateSummary(result *common.AnalysisResult) string {
	var parts []string

	if result.Classification != nil && result.Classification.Category != "" {
		parts = append(parts, fmt.Sprintf(
			"This appears to be a %s document (confidence: %.2f%%).",
			result.Classification.Category,
			result.Classification.Confidence*100,
		))
	}

	if result.Sentiment != nil && result.Sentiment.OverallSentiment != "" {
		parts = append(parts, fmt.Sprintf(
			"The overall sentiment is %s.",
			result.Sentiment.OverallSentiment,
		))
	}

	if result.Entities != nil && result.Entities.TotalEntities > 0 {
		parts = append(parts, fmt.Sprintf(
			"The document contains %d entities across %d different types.",
			result.Entities.TotalEntities,
			len(result.Entities.EntityTypes),
		))
	}

	if result.Statistics != nil && result.Statistics.TotalWords > 0 {
		parts = append(parts, fmt.Sprintf(
			"The document has approximately %d words.",
			result.Statistics.TotalWords,
		))
	}

	return strings.Join(parts, " ")
}

// extractKeyFindings builds the fixed ordered checklist of findings, each
// item included only when its triggering condition holds.
func extractKeyFindings(result *common.AnalysisResult) []string {
	findings := []string{}

	if result.Entities != nil && len(result.Entities.EntityCounts) > 0 {
		topType, topCount := topEntityType(result.Entities)
		findings = append(findings, fmt.Sprintf(
			"Most frequent entity type: %s (%d occurrences)", topType, topCount,
		))
	}

	if result.Sentiment != nil && result.Sentiment.PositiveChunks > 0 {
		total := result.Sentiment.TotalChunks
		if total == 0 {
			total = 1
		}
		pct := float64(result.Sentiment.PositiveChunks) / float64(total) * 100
		findings = append(findings, fmt.Sprintf(
			"%.1f%% of the content has positive sentiment", pct,
		))
	}

	if result.Structure != nil && result.Structure.HasTables {
		findings = append(findings, "Document contains structured tables")
	}
	if result.Structure != nil && result.Structure.HasLists {
		findings = append(findings, "Document contains lists or enumerated items")
	}

	if len(result.Dates) > 0 {
		findings = append(findings, fmt.Sprintf(
			"Document references %d specific dates", len(result.Dates),
		))
	}

	return findings
}

// topEntityType picks the most frequent entity type. Ties keep the document
// order recorded in EntityTypes so the finding is deterministic.
func topEntityType(entities *common.EntitySet) (string, int) {
	topType := ""
	topCount := 0
	for _, typ := range entities.EntityTypes {
		if count := entities.EntityCounts[typ]; count > topCount {
			topType = typ
			topCount = count
		}
	}
	if topType == "" {
		for typ, count := range entities.EntityCounts {
			if count > topCount {
				topType = typ
				topCount = count
			}
		}
	}
	return topType, topCount
}

// generateRecommendations emits fixed advice triggered by the document
// category, overall sentiment and entity types present.
func generateRecommendations(result *common.AnalysisResult) []string {
	recommendations := []string{}

	if result.Classification != nil {
		switch result.Classification.Category {
		case "invoice":
			recommendations = append(recommendations,
				"Review payment terms and due dates",
				"Verify amounts and line items",
			)
		case "contract":
			recommendations = append(recommendations,
				"Review all terms and conditions carefully",
				"Check effective dates and renewal clauses",
			)
		}
	}

	if result.Sentiment != nil && result.Sentiment.OverallSentiment == "negative" {
		recommendations = append(recommendations,
			"Pay attention to concerns or issues raised in the document",
		)
	}

	if result.Entities != nil {
		for _, typ := range result.Entities.EntityTypes {
			switch typ {
			case "PERSON":
				recommendations = append(recommendations, "Review mentions of key individuals")
			case "ORG":
				recommendations = append(recommendations, "Verify organizational relationships")
			}
		}
	}

	return recommendations
}

// confidenceScore averages whichever of the classification confidence,
// sentiment average score and OCR confidence are present. With none present
// the score is a neutral 0.5, not a computed estimate.
func confidenceScore(result *common.AnalysisResult) float64 {
	var scores []float64

	if result.Classification != nil && result.Classification.Confidence > 0 {
		scores = append(scores, result.Classification.Confidence)
	}
	if result.Sentiment != nil && result.Sentiment.AverageScore > 0 {
		scores = append(scores, result.Sentiment.AverageScore)
	}
	if result.OCRConfidence > 0 {
		scores = append(scores, result.OCRConfidence)
	}

	if len(scores) == 0 {
		return 0.5
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}
