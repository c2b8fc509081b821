package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkcloud/review-service/internal/domain"
	"github.com/inkcloud/review-service/internal/middleware"
	"github.com/inkcloud/review-service/internal/platform/logger"
	"github.com/inkcloud/review-service/internal/platform/metrics"
	"github.com/inkcloud/review-service/internal/usecase"
	"go.uber.org/zap"
)

// ReportHandler exposes abuse report filing and moderation over HTTP.
type ReportHandler struct {
	reports *usecase.ReportUsecase
	metrics *metrics.Manager
	logger  *logger.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *usecase.ReportUsecase, m *metrics.Manager, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		metrics: m,
		logger:  log.Named("ReportHandler"),
	}
}

// Create handles POST /report.
func (h *ReportHandler) Create(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	err := h.reports.Report(c.Request.Context(), req.ReviewID, middleware.Identity(c),
		domain.ReportType(req.Type), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.metrics.ReportsTotal.Inc()
	c.Status(http.StatusCreated)
}

// Search handles GET /reports with query-string filters.
func (h *ReportHandler) Search(c *gin.Context) {
	filter := domain.ReportSearchFilter{
		From:    c.Query("from"),
		To:      c.Query("to"),
		Keyword: c.Query("keyword"),
		Page:    queryInt(c, "page", 0),
		Size:    queryInt(c, "size", 10),
	}
	if t := c.Query("type"); t != "" {
		reportType := domain.ReportType(t)
		filter.Type = &reportType
	}

	page, err := h.reports.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reportPageResponse{
		Items: toReportViewResponses(page.Items),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
	})
}

// ByReview handles GET /reports/:reviewId.
func (h *ReportHandler) ByReview(c *gin.Context) {
	reviewID, err := pathID(c, "reviewId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	views, err := h.reports.ByReview(c.Request.Context(), reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReportViewResponses(views))
}

// Delete handles DELETE /report with a body of report ids.
func (h *ReportHandler) Delete(c *gin.Context) {
	var req deleteReportsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	h.logger.Info("Batch report delete requested",
		zap.Int("count", len(req.ReportIDs)),
		zap.String("requester", middleware.Identity(c)))

	if err := h.reports.DeleteMany(c.Request.Context(), req.ReportIDs); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
