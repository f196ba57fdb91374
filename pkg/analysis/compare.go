package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/doculens/backend/pkg/common"
)

// Compare contrasts the cached complete analyses of two documents. Both must
// have a live cache entry; comparison itself never reads the persisted store,
// but any read through Result writes its store fallback into the cache, so a
// document fetched once in this process stays comparable.
func (e *Engine) Compare(ctx context.Context, documentID1, documentID2 string) (*common.Comparison, error) {
	analysis1 := e.cachedAnalysis(ctx, documentID1)
	analysis2 := e.cachedAnalysis(ctx, documentID2)
	if analysis1 == nil || analysis2 == nil {
		return nil, ErrNotAnalyzed
	}

	comparison := &common.Comparison{
		Document1:       documentID1,
		Document2:       documentID2,
		Similarities:    []string{},
		Differences:     []string{},
		SharedEntities:  []string{},
		UniqueEntities1: []string{},
		UniqueEntities2: []string{},
	}

	cat1 := category(analysis1)
	cat2 := category(analysis2)
	if cat1 == cat2 {
		comparison.Similarities = append(comparison.Similarities,
			fmt.Sprintf("Both are %s documents", cat1))
	} else {
		comparison.Differences = append(comparison.Differences,
			fmt.Sprintf("Different types: %s vs %s", cat1, cat2))
	}

	sent1 := overallSentiment(analysis1)
	sent2 := overallSentiment(analysis2)
	if sent1 == sent2 {
		comparison.Similarities = append(comparison.Similarities,
			fmt.Sprintf("Both have %s sentiment", sent1))
	} else {
		comparison.Differences = append(comparison.Differences,
			fmt.Sprintf("Different sentiment: %s vs %s", sent1, sent2))
	}

	set1 := entityTexts(analysis1)
	set2 := entityTexts(analysis2)
	comparison.SharedEntities = intersection(set1, set2)
	comparison.UniqueEntities1 = difference(set1, set2)
	comparison.UniqueEntities2 = difference(set2, set1)

	return comparison, nil
}

func category(result *common.AnalysisResult) string {
	if result.Classification == nil {
		return ""
	}
	return result.Classification.Category
}

func overallSentiment(result *common.AnalysisResult) string {
	if result.Sentiment == nil {
		return ""
	}
	return result.Sentiment.OverallSentiment
}

func entityTexts(result *common.AnalysisResult) map[string]struct{} {
	texts := make(map[string]struct{})
	if result.Entities == nil {
		return texts
	}
	for _, entity := range result.Entities.Entities {
		texts[entity.Text] = struct{}{}
	}
	return texts
}

// intersection and difference return sorted slices so two comparisons of the
// same pair always serialize identically.
func intersection(a, b map[string]struct{}) []string {
	out := []string{}
	for text := range a {
		if _, ok := b[text]; ok {
			out = append(out, text)
		}
	}
	sort.Strings(out)
	return out
}

func difference(a, b map[string]struct{}) []string {
	out := []string{}
	for text := range a {
		if _, ok := b[text]; !ok {
			out = append(out, text)
		}
	}
	sort.Strings(out)
	return out
}
