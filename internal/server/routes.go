package server

import (
	"github.com/labstack/echo/v4"

	"github.com/doculens/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Document routes
	apiRoutes.POST("/upload", routes.UploadDocumentHandler)
	apiRoutes.POST("/upload/batch", routes.UploadBatchHandler)
	apiRoutes.GET("/documents", routes.ListDocumentsHandler)
	apiRoutes.GET("/document/:id", routes.GetDocumentHandler)
	apiRoutes.DELETE("/document/:id", routes.DeleteDocumentHandler)
	apiRoutes.GET("/document/:id/download", routes.DownloadDocumentHandler)
	apiRoutes.GET("/statistics", routes.GetStatisticsHandler)

	// Analysis routes
	apiRoutes.POST("/analyze", routes.AnalyzeDocumentHandler)
	apiRoutes.GET("/analysis/:id", routes.GetAnalysisHandler)
	apiRoutes.GET("/entities/:id", routes.GetEntitiesHandler)
	apiRoutes.GET("/sentiment/:id", routes.GetSentimentHandler)
	apiRoutes.GET("/knowledge-graph/:id", routes.GetKnowledgeGraphHandler)
	apiRoutes.GET("/timeline/:id", routes.GetTimelineHandler)
	apiRoutes.GET("/search", routes.SearchDocumentsHandler)

	// Insight routes
	apiRoutes.GET("/insights/:id", routes.GetInsightsHandler)
	apiRoutes.POST("/compare", routes.CompareDocumentsHandler)
	apiRoutes.GET("/entity-network/:id", routes.GetEntityNetworkHandler)
	apiRoutes.GET("/entity-paths/:id", routes.GetEntityPathsHandler)
	apiRoutes.GET("/central-entities/:id", routes.GetCentralEntitiesHandler)
	apiRoutes.GET("/document-summary/:id", routes.GetDocumentSummaryHandler)
	apiRoutes.GET("/trends", routes.GetTrendsHandler)
	apiRoutes.GET("/export-report/:id", routes.ExportReportHandler)
}
