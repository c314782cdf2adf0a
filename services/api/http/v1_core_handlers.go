package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/query"
)

const exportFilename = "educacion_basica_filtrado.csv"

// handleV1Options returns everything the filter controls need
// GET /api/v1/options
func (s *Server) handleV1Options(c *gin.Context) {
	tbl := *s.data.Dataset()

	metrics := make([]gin.H, 0, len(query.Metrics))
	for _, m := range query.Metrics {
		metrics = append(metrics, gin.H{"value": m, "label": m.Label()})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"domain":         query.Domain(tbl),
			"default_filter": query.DefaultFilter(tbl, s.cfg.Presentation.DefaultDepartments),
			"metrics":        metrics,
			"group_by":       []query.Field{query.FieldDepartment, query.FieldCategory, query.FieldInstitution},
			"legend":         s.legend(),
		},
		"meta": gin.H{
			"records": tbl.Len(),
		},
	})
}

// handleV1Records returns the filtered rows
// GET /api/v1/records?departamento=Antioquia&categoria=Alta&min=0.2&max=0.9&sort=valor_desc
func (s *Server) handleV1Records(c *gin.Context) {
	var params recordsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sorted, desc, err := params.order()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	full, tbl, ok := s.filtered(c)
	if !ok {
		return
	}
	if sorted {
		tbl = query.SortByValue(tbl, desc)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": tbl.Records,
		"meta": gin.H{
			"count":   tbl.Len(),
			"total":   full.Len(),
			"summary": query.SummaryStats(tbl),
		},
	})
}

// handleV1Summary returns count, mean, min and max of the filtered values
// GET /api/v1/summary
func (s *Server) handleV1Summary(c *gin.Context) {
	full, tbl, ok := s.filtered(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": query.SummaryStats(tbl),
		"meta": gin.H{
			"total": full.Len(),
		},
	})
}

// handleV1Export downloads the filtered rows as CSV with the dataset's header
// GET /api/v1/export.csv
func (s *Server) handleV1Export(c *gin.Context) {
	_, tbl, ok := s.filtered(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := dataset.WriteCSV(c.Writer, tbl); err != nil {
		s.logger.Error("csv export failed", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
		_ = c.Error(err)
	}
}

func (s *Server) legend() query.Legend {
	if len(s.cfg.Presentation.Legend) == 0 {
		return query.DefaultLegend()
	}
	return query.Legend(s.cfg.Presentation.Legend)
}
