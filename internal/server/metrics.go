package server

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// handleMetrics serves the shared Prometheus registry.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.Handler().ServeHTTP(w, r)
}

// metricsMiddleware counts responses by route pattern and status code.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.metrics.ObserveHTTP(routePattern(r), statusOf(ww))
	})
}
