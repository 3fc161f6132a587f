package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
)

// DashboardAPI wraps /api/dashboard. Chart payloads are passed through
// undecoded; the browser renders them.
type DashboardAPI struct {
	c *Client
}

// Chart names accepted by Chart.
const (
	ChartGenderDemographics = "gender-demographics"
	ChartUserGrowth         = "user-growth"
	ChartAgeDistribution    = "age-distribution"
)

func (d DashboardAPI) Stats(ctx context.Context) (map[string]any, error) {
	var stats map[string]any
	err := d.c.doJSON(ctx, http.MethodGet, "/api/dashboard/stats", nil, nil, &stats)
	return stats, err
}

func (d DashboardAPI) Analytics(ctx context.Context, period string) (json.RawMessage, error) {
	if period == "" {
		period = "monthly"
	}
	return d.raw(ctx, "/api/dashboard/analytics", url.Values{"period": {period}})
}

func (d DashboardAPI) RecentActivities(ctx context.Context, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	return d.raw(ctx, "/api/dashboard/activities", url.Values{"limit": {strconv.Itoa(limit)}})
}

func (d DashboardAPI) GenderDemographics(ctx context.Context) (json.RawMessage, error) {
	return d.raw(ctx, "/api/dashboard/"+ChartGenderDemographics, nil)
}

func (d DashboardAPI) UserGrowth(ctx context.Context, timeframe string) (json.RawMessage, error) {
	if timeframe == "" {
		timeframe = "monthly"
	}
	return d.raw(ctx, "/api/dashboard/"+ChartUserGrowth, url.Values{"timeframe": {timeframe}})
}

func (d DashboardAPI) AgeDistribution(ctx context.Context) (json.RawMessage, error) {
	return d.raw(ctx, "/api/dashboard/"+ChartAgeDistribution, nil)
}

// Chart fetches a chart payload by name. Only user-growth reads query, for its
// timeframe.
func (d DashboardAPI) Chart(ctx context.Context, name string, query url.Values) (json.RawMessage, error) {
	switch name {
	case ChartGenderDemographics:
		return d.GenderDemographics(ctx)
	case ChartUserGrowth:
		return d.UserGrowth(ctx, query.Get("timeframe"))
	case ChartAgeDistribution:
		return d.AgeDistribution(ctx)
	}
	return nil, apperrors.Wrapf(apperrors.ErrNotFound, "unknown chart %q", name)
}

func (d DashboardAPI) raw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	err := d.c.doJSON(ctx, http.MethodGet, path, query, nil, &out)
	return out, err
}
