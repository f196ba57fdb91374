package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doculens/backend/internal/queue"
	"github.com/doculens/backend/internal/server/middleware"
	"github.com/doculens/backend/pkg/analysis"
	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/store"
)

// AnalyzeDocumentHandler kicks off the analysis pipeline for one document.
// The request returns immediately; the worker picks the job up from the
// queue.
func AnalyzeDocumentHandler(c echo.Context) error {
	type analyzeData struct {
		DocumentID string `json:"document_id" validate:"required"`
		Force      bool   `json:"force"`
	}

	data := new(analyzeData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	doc, err := app.Store.GetDocument(ctx, data.DocumentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Analysis failed"})
	}
	if doc.TextContent == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Document has no text content"})
	}

	status := common.StatusProcessing
	if _, err := app.Store.UpdateDocument(ctx, doc.ID, store.DocumentUpdate{
		AnalysisStatus: &status,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Analysis failed"})
	}

	if err := queue.PublishAnalyze(app.Queue, queue.AnalyzeMessage{
		DocumentID: doc.ID,
		Force:      data.Force,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Analysis failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     "Analysis started",
		"document_id": doc.ID,
		"status":      common.StatusProcessing,
	})
}

// GetAnalysisHandler returns the latest complete analysis, cache-first.
func GetAnalysisHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	result, cached, err := app.Engine.Result(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, analysis.ErrNoAnalysis) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Analysis not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get analysis"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    result,
		"cached":  cached,
	})
}

// GetEntitiesHandler returns the persisted entities of one document,
// optionally filtered by type.
func GetEntitiesHandler(c echo.Context) error {
	id := c.Param("id")
	entityType := c.QueryParam("entity_type")

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	var entities []store.Entity
	var err error
	if entityType != "" {
		entities, err = app.Store.EntitiesByType(ctx, id, entityType)
	} else {
		entities, err = app.Store.EntitiesByDocument(ctx, id)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get entities"})
	}

	data := echo.Map{
		"entities": entities,
		"total":    len(entities),
	}
	if entityType != "" {
		data["entity_type"] = entityType
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    data,
	})
}

// GetSentimentHandler returns the sentiment block of the latest analysis.
func GetSentimentHandler(c echo.Context) error {
	result, ok := analysisOr404(c)
	if !ok {
		return nil
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    result.Sentiment,
	})
}

// GetKnowledgeGraphHandler returns the serialized knowledge graph of the
// latest analysis.
func GetKnowledgeGraphHandler(c echo.Context) error {
	result, ok := analysisOr404(c)
	if !ok {
		return nil
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    result.KnowledgeGraph,
	})
}

// GetTimelineHandler returns the extracted timeline and raw date mentions.
func GetTimelineHandler(c echo.Context) error {
	result, ok := analysisOr404(c)
	if !ok {
		return nil
	}

	timeline := result.Timeline
	if timeline == nil {
		timeline = []common.TimelineEntry{}
	}
	dates := result.Dates
	if dates == nil {
		dates = []common.DateMention{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"timeline":     timeline,
			"dates":        dates,
			"total_events": len(timeline),
		},
	})
}

// SearchDocumentsHandler runs full-text search across all documents.
func SearchDocumentsHandler(c echo.Context) error {
	type searchParams struct {
		Query string `query:"query" validate:"required"`
		Limit int    `query:"limit"`
	}

	params := new(searchParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request params"})
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	app := c.(*middleware.AppContext).App
	results, err := app.Store.SearchDocuments(c.Request().Context(), params.Query, params.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Search failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"results": results,
			"query":   params.Query,
			"total":   len(results),
		},
	})
}

// analysisOr404 loads the latest analysis for the :id param. On failure it
// writes the error response and returns ok=false.
func analysisOr404(c echo.Context) (*common.AnalysisResult, bool) {
	app := c.(*middleware.AppContext).App
	result, _, err := app.Engine.Result(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, analysis.ErrNoAnalysis) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "Analysis not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get analysis"})
		}
		return nil, false
	}
	return result, true
}
