package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"rental-pricing-api/dataset"
	"rental-pricing-api/services"

	"github.com/agnivade/levenshtein"
	"github.com/gin-gonic/gin"
)

const defaultPreviewRows = 15

// SnapshotSource serves dataset frames, usually a *services.SnapshotCache.
type SnapshotSource interface {
	Get(ctx context.Context, spec dataset.Spec) (*dataset.Frame, error)
}

type DatasetHandler struct {
	snapshots SnapshotSource
	spec      dataset.Spec
}

func NewDatasetHandler(snapshots SnapshotSource, spec dataset.Spec) *DatasetHandler {
	return &DatasetHandler{snapshots: snapshots, spec: spec}
}

type PreviewResponse struct {
	Data     []dataset.Record `json:"data" swaggertype:"array,object"`
	RowCount int              `json:"row_count" example:"15"`
}

type UniqueValuesResponse struct {
	UniqueColumns []any `json:"unique_columns" swaggertype:"array,string"`
}

type ColumnNotFoundResponse struct {
	Error      string `json:"error" example:"Column 'colour' not found in the dataset."`
	Suggestion string `json:"suggestion,omitempty" example:"paint_color"`
}

// Preview godoc
// @Summary Preview the pricing dataset
// @Description Returns the first rows of the pricing dataset.
// @Tags dataset
// @Produce json
// @Param rows query int false "Number of rows" default(15)
// @Success 200 {object} PreviewResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /preview [get]
func (h *DatasetHandler) Preview(c *gin.Context) {
	rows, err := strconv.Atoi(c.DefaultQuery("rows", strconv.Itoa(defaultPreviewRows)))
	if err != nil || rows < 0 {
		respondError(c, services.InvalidInput("rows must be a non-negative integer"))
		return
	}

	frame, err := h.snapshots.Get(c.Request.Context(), h.spec)
	if err != nil {
		respondError(c, err)
		return
	}

	data := frame.Head(rows)
	c.JSON(http.StatusOK, PreviewResponse{Data: data, RowCount: len(data)})
}

// UniqueValues godoc
// @Summary Distinct values of a column
// @Description Returns the distinct values of a pricing dataset column in first-seen order.
// @Tags dataset
// @Produce json
// @Param col_name query string true "Column name"
// @Success 200 {object} UniqueValuesResponse
// @Failure 422 {object} ColumnNotFoundResponse
// @Failure 502 {object} ErrorResponse
// @Router /unique-values [post]
func (h *DatasetHandler) UniqueValues(c *gin.Context) {
	column := c.Query("col_name")
	if column == "" {
		respondError(c, services.InvalidInput("col_name query parameter is required"))
		return
	}

	frame, err := h.snapshots.Get(c.Request.Context(), h.spec)
	if err != nil {
		respondError(c, err)
		return
	}

	values, ok := frame.Unique(column)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, ColumnNotFoundResponse{
			Error:      fmt.Sprintf("Column '%s' not found in the dataset.", column),
			Suggestion: closestColumn(column, frame.Columns()),
		})
		return
	}
	c.JSON(http.StatusOK, UniqueValuesResponse{UniqueColumns: values})
}

// closestColumn returns the column nearest to name by edit distance, or ""
// when every column is more than max(2, len(name)/3) edits away.
func closestColumn(name string, columns []string) string {
	maxDist := max(2, len(name)/3)
	best, bestDist := "", maxDist+1
	for _, col := range columns {
		if col == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(name, col); d < bestDist {
			best, bestDist = col, d
		}
	}
	return best
}
