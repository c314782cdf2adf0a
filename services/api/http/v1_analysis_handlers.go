package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/query"
)

// handleV1Aggregate groups the filtered rows and reduces each group with a metric
// GET /api/v1/aggregate?metric=average&group_by=departamento&group_by=categoria
func (s *Server) handleV1Aggregate(c *gin.Context) {
	var params aggregateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "metric is required"})
		return
	}
	metric, err := query.ParseMetric(params.Metric)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	groupBy, err := params.fields()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, tbl, ok := s.filtered(c)
	if !ok {
		return
	}

	result, err := query.Aggregate(tbl, query.AggregationSpec{Metric: metric, GroupBy: groupBy})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result.Records(),
		"meta": gin.H{
			"metric":       result.Metric,
			"label":        result.Metric.Label(),
			"group_by":     result.GroupBy,
			"value_column": result.ValueColumn(),
			"count":        len(result.Rows),
			"filtered":     tbl.Len(),
		},
	})
}

// handleV1Distribution returns box statistics of the filtered values per group
// GET /api/v1/distribution?group_by=departamento
func (s *Server) handleV1Distribution(c *gin.Context) {
	var params groupParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	groupBy, err := params.fields()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, tbl, ok := s.filtered(c)
	if !ok {
		return
	}

	result, err := query.Distribution(tbl, groupBy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result.Rows,
		"meta": gin.H{
			"group_by": result.GroupBy,
			"count":    len(result.Rows),
			"filtered": tbl.Len(),
		},
	})
}
