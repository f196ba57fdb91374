// Package timeline correlates extracted date mentions with nearby entities
// by text-position proximity.
package timeline

import (
	"sort"

	"github.com/doculens/backend/pkg/common"
)

// proximityWindow is the maximum character distance between an entity start
// and a date start for the entity to count as related. The boundary itself
// does not match.
const proximityWindow = 100

// maxRelatedEntities caps how many entity texts attach to one timeline entry.
const maxRelatedEntities = 5

// contextTag is a coarse placeholder classification for every entry; no
// semantic event typing happens here.
const contextTag = "event"

// Build produces an ordered sequence of dated events. For each date mention
// it attaches up to the first five entities whose start offset lies within
// 100 characters of the date's start. The result is sorted ascending by
// character position: ordering is positional, not calendar-based, so a date
// mentioned earlier in the text sorts first even when it is semantically
// later in time.
func Build(dates []common.DateMention, entities []common.Entity) []common.TimelineEntry {
	entries := make([]common.TimelineEntry, 0, len(dates))

	for _, date := range dates {
		related := make([]string, 0, maxRelatedEntities)
		for _, entity := range entities {
			if abs(entity.Start-date.Start) < proximityWindow {
				related = append(related, entity.Text)
				if len(related) == maxRelatedEntities {
					break
				}
			}
		}

		entries = append(entries, common.TimelineEntry{
			Date:            date.Text,
			Position:        date.Start,
			RelatedEntities: related,
			Context:         contextTag,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})

	return entries
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
