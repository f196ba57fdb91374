// Package ruleclass implements the nlp.Classifier interface with keyword
// scoring and regex field extraction. It needs no model service and runs
// in-process.
package ruleclass

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/doculens/backend/pkg/common"
)

// Classifier is a rule-based document type classifier.
type Classifier struct{}

// New creates a rule-based classifier.
func New() *Classifier {
	return &Classifier{}
}

var categories = []string{
	"invoice",
	"contract",
	"report",
	"letter",
	"form",
	"receipt",
	"statement",
	"other",
}

// categoryKeywords drives the keyword-match scoring. The keyword order also
// fixes the score iteration order, so classification is deterministic.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"invoice", []string{"invoice", "bill", "payment", "due date", "amount due", "total", "subtotal"}},
	{"contract", []string{"agreement", "contract", "terms", "conditions", "parties", "whereas", "hereby"}},
	{"report", []string{"report", "summary", "analysis", "findings", "conclusion", "executive summary"}},
	{"letter", []string{"dear", "sincerely", "regards", "yours truly", "to whom it may concern"}},
	{"form", []string{"form", "application", "please fill", "signature", "date", "checkbox"}},
	{"receipt", []string{"receipt", "purchase", "paid", "transaction", "reference number"}},
	{"statement", []string{"statement", "balance", "account", "period", "transactions"}},
}

// Classify scores every category by the share of its keywords present in the
// text, normalizes the scores to sum to one, and picks the top category.
// When nothing matches the document is "other" with zero confidence.
func (c *Classifier) Classify(ctx context.Context, text string) (*common.Classification, error) {
	lower := strings.ToLower(text)

	scores := make(map[string]float64, len(categoryKeywords))
	total := 0.0
	for _, ck := range categoryKeywords {
		count := 0
		for _, keyword := range ck.keywords {
			if strings.Contains(lower, keyword) {
				count++
			}
		}
		score := float64(count) / float64(len(ck.keywords))
		scores[ck.category] = score
		total += score
	}
	if total > 0 {
		for category, score := range scores {
			scores[category] = score / total
		}
	}

	category := "other"
	confidence := 0.0
	for _, ck := range categoryKeywords {
		if scores[ck.category] > confidence {
			category = ck.category
			confidence = scores[ck.category]
		}
	}

	return &common.Classification{
		Category:      category,
		Confidence:    confidence,
		Scores:        scores,
		AllCategories: categories,
	}, nil
}

var (
	reInvoiceNumber = regexp.MustCompile(`(?i)invoice\s*#?\s*:?\s*(\w+)`)
	reAmount        = regexp.MustCompile(`\$\s*(\d+[,\d]*\.?\d*)`)
	reDate          = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	reParties       = regexp.MustCompile(`between\s+([A-Z][a-z\s]+)\s+and\s+([A-Z][a-z\s]+)`)
	reEffectiveDate = regexp.MustCompile(`(?i)effective\s+(?:date\s*:?\s*)?(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	reTransactionID = regexp.MustCompile(`(?i)(?:transaction|reference|receipt)\s*#?\s*:?\s*(\w+)`)
)

// ExtractMetadata pulls category-specific fields from the text. Categories
// without extraction rules return an empty field set.
func (c *Classifier) ExtractMetadata(ctx context.Context, text string, category string) (*common.Metadata, error) {
	fields := make(map[string][]string)

	switch category {
	case "invoice":
		if m := reInvoiceNumber.FindStringSubmatch(text); m != nil {
			fields["invoice_number"] = []string{m[1]}
		}
		if amounts := findAmounts(text); len(amounts) > 0 {
			fields["amounts"] = amounts
			// The last amount on an invoice is usually the total.
			fields["total_amount"] = []string{amounts[len(amounts)-1]}
		}
		if dates := reDate.FindAllString(text, -1); len(dates) > 0 {
			fields["dates"] = dates
		}
	case "contract":
		if m := reParties.FindStringSubmatch(text); m != nil {
			fields["parties"] = []string{m[1], m[2]}
		}
		if m := reEffectiveDate.FindStringSubmatch(text); m != nil {
			fields["effective_date"] = []string{m[1]}
		}
	case "receipt":
		if m := reTransactionID.FindStringSubmatch(text); m != nil {
			fields["transaction_id"] = []string{m[1]}
		}
		if amounts := findAmounts(text); len(amounts) > 0 {
			fields["amount"] = []string{amounts[len(amounts)-1]}
		}
	}

	return &common.Metadata{
		Category:        category,
		ExtractedFields: fields,
	}, nil
}

func findAmounts(text string) []string {
	matches := reAmount.FindAllStringSubmatch(text, -1)
	amounts := make([]string, 0, len(matches))
	for _, m := range matches {
		amounts = append(amounts, m[1])
	}
	return amounts
}

var (
	reBullet   = regexp.MustCompile(`^\s*[-*•]`)
	reNumbered = regexp.MustCompile(`^\s*\d+\.`)
	reLettered = regexp.MustCompile(`^\s*\([a-z]\)`)
)

// DocumentStructure describes line statistics and layout heuristics: more
// than two ALL-CAPS lines count as headers, '|' or tab characters as tables,
// more than two bullet or numbered lines as lists.
func (c *Classifier) DocumentStructure(ctx context.Context, text string) (*common.StructureInfo, error) {
	lines := strings.Split(text, "\n")

	nonEmpty := 0
	totalLength := 0
	headerLines := 0
	listLines := 0
	for _, line := range lines {
		totalLength += len(line)
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
		if len(line) > 5 && isUpper(line) {
			headerLines++
		}
		if reBullet.MatchString(line) || reNumbered.MatchString(line) || reLettered.MatchString(line) {
			listLines++
		}
	}

	avgLine := 0.0
	if len(lines) > 0 {
		avgLine = float64(totalLength) / float64(len(lines))
	}

	return &common.StructureInfo{
		TotalLines:        len(lines),
		NonEmptyLines:     nonEmpty,
		AverageLineLength: avgLine,
		HasHeaders:        headerLines > 2,
		HasTables:         strings.ContainsAny(text, "|\t"),
		HasLists:          listLines > 2,
	}, nil
}

// isUpper reports whether the line contains at least one letter and no
// lowercase letters, matching the upper-case header heuristic.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
