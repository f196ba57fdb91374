package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/doculens/backend/pkg/common"
)

// Statistics computes the deterministic text statistics block. Words are
// whitespace-split; sentences are split on the literal "." which undercounts
// real sentence boundaries, a documented simplification the numbers must stay
// stable against. Re-running over the same text yields identical values.
func Statistics(text string) common.TextStatistics {
	words := strings.Fields(text)
	sentences := strings.Split(text, ".")

	totalWordLength := 0
	unique := make(map[string]struct{}, len(words))
	for _, word := range words {
		totalWordLength += utf8.RuneCountInString(word)
		unique[word] = struct{}{}
	}

	stats := common.TextStatistics{
		TotalCharacters: utf8.RuneCountInString(text),
		TotalWords:      len(words),
		TotalSentences:  len(sentences),
		UniqueWords:     len(unique),
	}

	if len(words) > 0 {
		stats.AvgWordLength = float64(totalWordLength) / float64(len(words))
		stats.VocabularyRichness = float64(len(unique)) / float64(len(words))
	}
	if len(sentences) > 0 {
		stats.AvgSentenceLength = float64(len(words)) / float64(len(sentences))
	}

	return stats
}
