package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/articulink/admin-dashboard/apiclient"
	"github.com/rs/zerolog/log"
)

const recentActivityLimit = 10

// DashboardContent is the model of the dashboard page. Charts are loaded by
// the page's script from the chart route.
type DashboardContent struct {
	Stats      map[string]any
	UserStats  apiclient.UserStats
	Activities []Activity
	Charts     []string
}

type Activity struct {
	Type      string    `json:"type"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardHandler renders the analytics summary
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := sessionFromContext(r)
		data := s.newPageData(r, "dashboard", "Dashboard")
		content := DashboardContent{
			Charts: []string{apiclient.ChartUserGrowth, apiclient.ChartGenderDemographics, apiclient.ChartAgeDistribution},
		}

		stats, err := b.client.Dashboard().Stats(r.Context())
		if redirectIfInvalidated(w, r, err) {
			return
		}
		if err != nil {
			data.Error = apiclient.Message(err)
		}
		content.Stats = stats

		userStats, err := b.client.Users().Stats(r.Context())
		if redirectIfInvalidated(w, r, err) {
			return
		}
		if err != nil && data.Error == "" {
			data.Error = apiclient.Message(err)
		}
		content.UserStats = userStats

		raw, err := b.client.Dashboard().RecentActivities(r.Context(), recentActivityLimit)
		if redirectIfInvalidated(w, r, err) {
			return
		}
		if err == nil {
			var body struct {
				Activities []Activity `json:"activities"`
			}
			if err := json.Unmarshal(raw, &body); err != nil {
				log.Warn().Err(err).Msg("Unreadable activity feed")
			}
			content.Activities = body.Activities
		}

		data.Content = content
		s.renderPage(w, "dashboard.html", data)
	}
}

// ChartHandler passes a chart payload from the backend through to the
// dashboard script (GET /api/dashboard/{chart}).
func (s *Server) ChartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := sessionFromContext(r)
		raw, err := b.client.Dashboard().Chart(r.Context(), r.PathValue("chart"), r.URL.Query())
		if err != nil {
			s.writeAPIError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		_, _ = w.Write(raw)
	}
}
