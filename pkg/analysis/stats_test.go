package analysis

import (
	"reflect"
	"testing"

	"github.com/doculens/backend/pkg/common"
)

func TestStatistics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want common.TextStatistics
	}{
		{
			name: "empty text",
			text: "",
			want: common.TextStatistics{
				TotalSentences:    1,
				AvgSentenceLength: 0,
			},
		},
		{
			name: "simple sentence",
			text: "the cat sat.",
			want: common.TextStatistics{
				TotalCharacters:    12,
				TotalWords:         3,
				TotalSentences:     2,
				AvgWordLength:      10.0 / 3.0,
				AvgSentenceLength:  1.5,
				UniqueWords:        3,
				VocabularyRichness: 1,
			},
		},
		{
			name: "repeated words lower richness",
			text: "go go go stop",
			want: common.TextStatistics{
				TotalCharacters:    13,
				TotalWords:         4,
				TotalSentences:     1,
				AvgWordLength:      10.0 / 4.0,
				AvgSentenceLength:  4,
				UniqueWords:        2,
				VocabularyRichness: 0.5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Statistics(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Statistics(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestStatisticsDeterministic(t *testing.T) {
	text := "Revenue grew. Costs fell. Revenue grew again."
	first := Statistics(text)
	second := Statistics(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Statistics not deterministic: %#v vs %#v", first, second)
	}
}
