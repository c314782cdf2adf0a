package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/query"
)

// handleV1Map returns map markers for the filtered rows that have coordinates
// GET /api/v1/map
func (s *Server) handleV1Map(c *gin.Context) {
	_, tbl, ok := s.filtered(c)
	if !ok {
		return
	}

	markers := query.Markers(tbl, s.legend())

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"center":  s.cfg.Presentation.Map,
			"legend":  s.legend(),
			"markers": markers,
		},
		"meta": gin.H{
			"count":               len(markers),
			"filtered":            tbl.Len(),
			"without_coordinates": tbl.Len() - len(markers),
		},
	})
}
