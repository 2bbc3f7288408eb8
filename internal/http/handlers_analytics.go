package http

import (
	"net/http"

	"conti/internal/analytics"
	"conti/internal/core"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request, user core.User) {
	q := r.URL.Query()
	var (
		f   analytics.Filter
		err error
	)
	if f.Period, err = analytics.ParsePeriod(q.Get("period")); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Kind, err = analytics.ParseKind(q.Get("kind")); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Start, err = queryDate(q, "start"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.End, err = queryDate(q, "end"); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.svc.Analytics.Report(r.Context(), user.ID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request, user core.User) {
	q := r.URL.Query()
	g, err := analytics.ParseGranularity(q.Get("granularity"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	kind, err := analytics.ParseKind(q.Get("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := queryDate(q, "start")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryDate(q, "end")
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.svc.Analytics.Trends(r.Context(), user.ID, g, kind, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(points))
}
