package server

import (
	"net/http"
	"strings"
)

// setupRoutes registers the API routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/funds", s.app.FundHandler.ListFundsHandler)
	mux.HandleFunc("/api/funds/magic-numbers", s.app.FundHandler.MagicNumbersHandler)
	mux.HandleFunc("/api/funds/", func(w http.ResponseWriter, r *http.Request) {
		// Path-parameter route; the fixed magic-numbers route above wins
		// on exact match.
		if strings.HasPrefix(r.URL.Path, "/api/funds/magic-numbers") {
			s.app.FundHandler.MagicNumbersHandler(w, r)
			return
		}
		s.app.FundHandler.GetFundHandler(w, r)
	})
	mux.HandleFunc("/api/analysis", s.app.FundHandler.AnalysisHandler)
	mux.HandleFunc("/api/status", s.app.StatusHandler.Status)

	return mux
}
