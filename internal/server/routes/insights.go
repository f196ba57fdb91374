package routes

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/doculens/backend/internal/server/middleware"
	"github.com/doculens/backend/pkg/analysis"
	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/graph"
	"github.com/doculens/backend/pkg/store"
)

// GetInsightsHandler returns the derived insights of the latest analysis.
func GetInsightsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	insights, err := app.Engine.Insights(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, analysis.ErrNoAnalysis) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Analysis not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate insights"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    insights,
	})
}

// CompareDocumentsHandler contrasts the cached analyses of two documents.
func CompareDocumentsHandler(c echo.Context) error {
	type compareData struct {
		DocumentID1 string `json:"document_id_1" validate:"required"`
		DocumentID2 string `json:"document_id_2" validate:"required"`
	}

	data := new(compareData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	comparison, err := app.Engine.Compare(c.Request().Context(), data.DocumentID1, data.DocumentID2)
	if err != nil {
		if errors.Is(err, analysis.ErrNotAnalyzed) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "One or both documents not analyzed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Comparison failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    comparison,
	})
}

// GetEntityNetworkHandler returns the neighborhood of one entity in the
// document's knowledge graph, rebuilt from the persisted analysis.
func GetEntityNetworkHandler(c echo.Context) error {
	type networkParams struct {
		Entity string `query:"entity" validate:"required"`
		Depth  int    `query:"depth"`
	}

	params := new(networkParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if params.Depth <= 0 {
		params.Depth = 1
	}

	result, ok := analysisOr404(c)
	if !ok {
		return nil
	}

	g := buildGraph(result)
	neighbors := g.Neighbors(params.Entity, params.Depth)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"entity":          params.Entity,
			"depth":           params.Depth,
			"neighbors":       neighbors.Neighbors,
			"total_neighbors": neighbors.Count,
		},
	})
}

// GetEntityPathsHandler returns the simple directed paths between two
// entities of the document's knowledge graph.
func GetEntityPathsHandler(c echo.Context) error {
	type pathParams struct {
		Source string `query:"source" validate:"required"`
		Target string `query:"target" validate:"required"`
	}

	params := new(pathParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}

	result, ok := analysisOr404(c)
	if !ok {
		return nil
	}

	paths := buildGraph(result).FindPaths(params.Source, params.Target)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"source": params.Source,
			"target": params.Target,
			"paths":  paths,
			"total":  len(paths),
		},
	})
}

// GetCentralEntitiesHandler returns the highest-degree entities of the
// document's knowledge graph.
func GetCentralEntitiesHandler(c echo.Context) error {
	type centralParams struct {
		TopN int `query:"top_n"`
	}

	params := new(centralParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if params.TopN <= 0 {
		params.TopN = 5
	}

	result, ok := analysisOr404(c)
	if !ok {
		return nil
	}

	central := buildGraph(result).CentralEntities(params.TopN)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"central_entities": central,
			"total":            len(central),
		},
	})
}

// GetDocumentSummaryHandler combines document metadata with the analysis
// highlights into one overview record.
func GetDocumentSummaryHandler(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	doc, err := app.Store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate summary"})
	}

	summary := echo.Map{
		"document_id": id,
		"filename":    doc.Filename,
		"file_type":   doc.FileType,
		"upload_date": doc.UploadDate,
		"file_size":   doc.FileSize,
	}

	result, _, err := app.Engine.Result(ctx, id)
	if err != nil {
		if !errors.Is(err, analysis.ErrNoAnalysis) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate summary"})
		}
		summary["analysis_status"] = "not_analyzed"
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": summary})
	}

	summary["category"] = "unknown"
	if result.Classification != nil && result.Classification.Category != "" {
		summary["category"] = result.Classification.Category
	}
	summary["sentiment"] = "neutral"
	if result.Sentiment != nil && result.Sentiment.OverallSentiment != "" {
		summary["sentiment"] = result.Sentiment.OverallSentiment
	}
	if result.Entities != nil {
		summary["total_entities"] = result.Entities.TotalEntities
		summary["entity_types"] = result.Entities.EntityTypes
	} else {
		summary["total_entities"] = 0
		summary["entity_types"] = []string{}
	}
	if result.Statistics != nil {
		summary["total_words"] = result.Statistics.TotalWords
	} else {
		summary["total_words"] = 0
	}
	summary["has_tables"] = result.Structure != nil && result.Structure.HasTables
	summary["has_lists"] = result.Structure != nil && result.Structure.HasLists
	summary["dates_mentioned"] = len(result.Dates)

	if insights, err := app.Engine.Insights(ctx, id); err == nil {
		summary["natural_language_summary"] = insights.Summary
		summary["key_findings"] = insights.KeyFindings
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    summary,
	})
}

// GetTrendsHandler aggregates document types, sentiment distribution and
// common entities across recent documents.
func GetTrendsHandler(c echo.Context) error {
	type trendsParams struct {
		Limit int `query:"limit"`
	}

	params := new(trendsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if params.Limit <= 0 {
		params.Limit = 100
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	documents, err := app.Store.ListDocuments(ctx, 0, params.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get trends"})
	}

	documentTypes := make(map[string]int)
	commonEntities := make(map[string]map[string]int)
	sentimentDistribution := map[string]int{
		"positive": 0,
		"negative": 0,
		"neutral":  0,
	}
	uploadTimeline := make([]string, 0, len(documents))

	for _, doc := range documents {
		docType := doc.FileType
		if docType == "" {
			docType = "unknown"
		}
		documentTypes[docType]++

		result, _, err := app.Engine.Result(ctx, doc.ID)
		if err == nil {
			sentiment := "neutral"
			if result.Sentiment != nil && result.Sentiment.OverallSentiment != "" {
				sentiment = result.Sentiment.OverallSentiment
			}
			if _, ok := sentimentDistribution[sentiment]; ok {
				sentimentDistribution[sentiment]++
			}

			if result.Entities != nil {
				for entityType, texts := range result.Entities.UniqueEntities {
					if commonEntities[entityType] == nil {
						commonEntities[entityType] = make(map[string]int)
					}
					for _, text := range texts {
						commonEntities[entityType][text]++
					}
				}
			}
		}

		uploadTimeline = append(uploadTimeline, doc.UploadDate.Format("2006-01-02"))
	}

	for entityType, counts := range commonEntities {
		commonEntities[entityType] = topEntities(counts, 10)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"total_documents":        len(documents),
			"document_types":         documentTypes,
			"common_entities":        commonEntities,
			"sentiment_distribution": sentimentDistribution,
			"upload_timeline":        uploadTimeline,
		},
	})
}

// ExportReportHandler builds the full analysis report as JSON or markdown.
func ExportReportHandler(c echo.Context) error {
	id := c.Param("id")
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "markdown" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unsupported format. Use 'json' or 'markdown'"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	doc, err := app.Store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export report"})
	}

	result, _, err := app.Engine.Result(ctx, id)
	if err != nil {
		if errors.Is(err, analysis.ErrNoAnalysis) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Analysis not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export report"})
	}

	insights, err := app.Engine.Insights(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export report"})
	}

	generatedAt := time.Now().UTC()

	if format == "markdown" {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"data":    markdownReport(doc, result, insights, generatedAt),
			"format":  "markdown",
		})
	}

	report := echo.Map{
		"document_info": echo.Map{
			"id":          id,
			"filename":    doc.Filename,
			"file_type":   doc.FileType,
			"file_size":   doc.FileSize,
			"upload_date": doc.UploadDate,
		},
		"classification": result.Classification,
		"sentiment":      result.Sentiment,
		"entities":       result.Entities,
		"relationships":  result.Relationships,
		"timeline":       result.Timeline,
		"statistics":     result.Statistics,
		"structure":      result.Structure,
		"insights":       insights,
		"generated_at":   generatedAt,
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    report,
		"format":  "json",
	})
}

func markdownReport(doc *common.Document, result *common.AnalysisResult, insights *common.Insights, generatedAt time.Time) string {
	category := "unknown"
	confidence := 0.0
	if result.Classification != nil {
		if result.Classification.Category != "" {
			category = result.Classification.Category
		}
		confidence = result.Classification.Confidence
	}

	sentiment := "neutral"
	averageScore := 0.0
	if result.Sentiment != nil {
		if result.Sentiment.OverallSentiment != "" {
			sentiment = result.Sentiment.OverallSentiment
		}
		averageScore = result.Sentiment.AverageScore
	}

	totalEntities := 0
	entityTypes := []string{}
	if result.Entities != nil {
		totalEntities = result.Entities.TotalEntities
		entityTypes = result.Entities.EntityTypes
	}

	var b strings.Builder
	b.WriteString("# Document Analysis Report\n\n")
	b.WriteString("## Document Information\n")
	fmt.Fprintf(&b, "- **Filename**: %s\n", doc.Filename)
	fmt.Fprintf(&b, "- **Type**: %s\n", doc.FileType)
	fmt.Fprintf(&b, "- **Size**: %d bytes\n", doc.FileSize)
	fmt.Fprintf(&b, "- **Uploaded**: %s\n\n", doc.UploadDate.Format(time.RFC3339))
	b.WriteString("## Classification\n")
	fmt.Fprintf(&b, "- **Category**: %s\n", category)
	fmt.Fprintf(&b, "- **Confidence**: %.2f%%\n\n", confidence*100)
	b.WriteString("## Sentiment Analysis\n")
	fmt.Fprintf(&b, "- **Overall Sentiment**: %s\n", sentiment)
	fmt.Fprintf(&b, "- **Average Score**: %.2f\n\n", averageScore)
	b.WriteString("## Entities\n")
	fmt.Fprintf(&b, "- **Total Entities**: %d\n", totalEntities)
	fmt.Fprintf(&b, "- **Entity Types**: %s\n\n", strings.Join(entityTypes, ", "))
	b.WriteString("## Key Insights\n")
	if insights.Summary != "" {
		b.WriteString(insights.Summary)
	} else {
		b.WriteString("No insights available")
	}
	b.WriteString("\n\n### Key Findings\n")
	for _, finding := range insights.KeyFindings {
		fmt.Fprintf(&b, "- %s\n", finding)
	}
	b.WriteString("\n### Recommendations\n")
	for _, rec := range insights.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	b.WriteString("\n---\n")
	fmt.Fprintf(&b, "*Report generated on %s*\n", generatedAt.Format(time.RFC3339))

	return b.String()
}

// buildGraph reconstructs the knowledge graph from the persisted analyzer
// outputs.
func buildGraph(result *common.AnalysisResult) *graph.Graph {
	var entities []common.Entity
	if result.Entities != nil {
		entities = result.Entities.Entities
	}
	return graph.Build(entities, result.Relationships)
}

// topEntities keeps the n most frequent entries, counts descending, name
// ascending on ties so the output is stable.
func topEntities(counts map[string]int, n int) map[string]int {
	type entry struct {
		text  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for text, count := range counts {
		entries = append(entries, entry{text, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].text < entries[j].text
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	top := make(map[string]int, len(entries))
	for _, e := range entries {
		top[e.text] = e.count
	}
	return top
}
