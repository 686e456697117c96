package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rental-pricing-api/models"
	"rental-pricing-api/services"

	"github.com/gin-gonic/gin"
)

const (
	defaultLogPageSize = 50
	maxLogPageSize     = 200
)

// PredictionLogPage is one page of the prediction log. NextCursor is the
// created_at of the last row and goes back in as ?before=.
type PredictionLogPage struct {
	Data       []models.PredictionLog `json:"data"`
	NextCursor string                 `json:"next_cursor,omitempty"`
	HasMore    bool                   `json:"has_more"`
}

type logQuery struct {
	limit  int
	before *time.Time
}

// parseLogQuery reads limit and before. Bad values fall back to the
// newest defaultLogPageSize rows; limit is capped at maxLogPageSize.
func parseLogQuery(c *gin.Context) logQuery {
	q := logQuery{limit: defaultLogPageSize}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		q.limit = min(l, maxLogPageSize)
	}
	if before, err := time.Parse(time.RFC3339Nano, c.Query("before")); err == nil {
		q.before = &before
	}
	return q
}

type PredictionLogHandler struct {
	predLog *services.PredictionLogService
}

func NewPredictionLogHandler(predLog *services.PredictionLogService) *PredictionLogHandler {
	return &PredictionLogHandler{predLog: predLog}
}

// List godoc
// @Summary Recent prediction requests
// @Description Cursor-paginated list of served prediction requests, newest first.
// @Tags prediction
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param before query string false "RFC3339 cursor from next_cursor"
// @Success 200 {object} PredictionLogPage
// @Failure 503 {object} ErrorResponse
// @Router /predictions/log [get]
func (h *PredictionLogHandler) List(c *gin.Context) {
	if !h.predLog.Enabled() {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "prediction log is disabled"})
		return
	}
	q := parseLogQuery(c)

	// one extra row tells whether another page exists
	rows, err := h.predLog.Recent(c.Request.Context(), q.limit+1, q.before)
	if err != nil {
		respondError(c, err)
		return
	}

	page := PredictionLogPage{Data: rows}
	if len(rows) > q.limit {
		page.Data = rows[:q.limit]
		page.HasMore = true
		page.NextCursor = page.Data[q.limit-1].CreatedAt.Format(time.RFC3339Nano)
	}
	if page.Data == nil {
		page.Data = []models.PredictionLog{}
	}
	c.JSON(http.StatusOK, page)
}
