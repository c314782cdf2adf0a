package http

// registerV1Routes sets up the dashboard API.
// Every data route accepts the same filter parameters (see filterParams).
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	// Dataset endpoints - filter controls, rows, summary and export
	v1.GET("/options", s.handleV1Options)
	v1.GET("/records", s.handleV1Records)
	v1.GET("/summary", s.handleV1Summary)
	v1.GET("/export.csv", s.handleV1Export)

	// Comparison endpoints - grouped metrics and value distribution
	v1.GET("/aggregate", s.handleV1Aggregate)
	v1.GET("/distribution", s.handleV1Distribution)

	// Map endpoint - markers for records with coordinates
	v1.GET("/map", s.handleV1Map)
}
