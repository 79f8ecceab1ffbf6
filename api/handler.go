package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"price-scout/models"
	"price-scout/scraper/marketplace"
	"price-scout/utils"
)

// ReportHandler builds a fresh report for every request.
type ReportHandler struct {
	builder ReportBuilder
	logger  *utils.Logger
}

func NewReportHandler(builder ReportBuilder, logger *utils.Logger) *ReportHandler {
	return &ReportHandler{builder: builder, logger: logger}
}

type reportResponse struct {
	Report  *models.Report  `json:"report"`
	Summary *models.Summary `json:"summary"`
}

// GetReport returns the full report with its summary statistics.
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, ok := h.build(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reportResponse{Report: report, Summary: h.builder.Summarize(report)})
}

// GetCheapest returns only the headline listing. No qualifying listings
// is a 404, so clients can tell it apart from an upstream failure.
func (h *ReportHandler) GetCheapest(c *gin.Context) {
	report, ok := h.build(c)
	if !ok {
		return
	}
	if report.Cheapest == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "no results found",
			"query":     report.Query,
			"fetchedAt": report.FetchedAt,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        report.ID,
		"query":     report.Query,
		"fetchedAt": report.FetchedAt,
		"cheapest":  report.Cheapest,
	})
}

func (h *ReportHandler) build(c *gin.Context) (*models.Report, bool) {
	report, err := h.builder.Build(c.Request.Context())
	if err == nil {
		return report, true
	}

	h.logger.Error("[api] Report failed: %v", err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "marketplace timed out", "details": err.Error()})
	case errors.Is(err, marketplace.ErrFetchFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "marketplace data unavailable", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
	}
	return nil, false
}
