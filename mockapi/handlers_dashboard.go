package mockapi

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/articulink/admin-dashboard/users"
)

type genderCount struct {
	Gender     string  `json:"gender"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ageCount struct {
	AgeRange   string  `json:"age_range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type growthPoint struct {
	Period     string `json:"period"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}

type activity struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

var ageRanges = []struct {
	label    string
	min, max int
}{
	{"Under 18", 0, 17},
	{"18-24", 18, 24},
	{"25-34", 25, 34},
	{"35-44", 35, 44},
	{"45-54", 45, 54},
	{"55+", 55, math.MaxInt},
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*1000/float64(total)) / 10
}

func (s *Server) allUsers(w http.ResponseWriter) ([]*users.User, bool) {
	list, err := s.users.List(users.Filter{})
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Error fetching dashboard data")
		return nil, false
	}
	return list, true
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.users.Stats()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Error fetching dashboard data")
		return
	}
	list, ok := s.allUsers(w)
	if !ok {
		return
	}
	monthStart := time.Date(users.NowTimeFunc().Year(), users.NowTimeFunc().Month(), 1, 0, 0, 0, 0, time.UTC)
	newThisMonth := 0
	for _, u := range list {
		if !u.CreatedAt.Before(monthStart) {
			newThisMonth++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":          stats.TotalUsers,
		"active_users":         stats.ByStatus["active"],
		"inactive_users":       stats.ByStatus["inactive"],
		"admin_users":          stats.ByRole["admin"],
		"new_users_this_month": newThisMonth,
		"by_role":              stats.ByRole,
		"by_status":            stats.ByStatus,
		"by_deactivation_type": stats.ByDeactivationType,
	})
}

func (s *Server) genderDemographics(w http.ResponseWriter, r *http.Request) {
	list, ok := s.allUsers(w)
	if !ok {
		return
	}
	counts := map[string]int{}
	for _, u := range list {
		g := strings.TrimSpace(u.Gender)
		if g == "" {
			g = "Not specified"
		}
		counts[g]++
	}
	out := make([]genderCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, genderCount{Gender: g, Count: n, Percentage: percentage(n, len(list))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Gender < out[j].Gender
		}
		return out[i].Count > out[j].Count
	})
	writeJSON(w, http.StatusOK, map[string]any{"gender_distribution": out, "total_users": len(list)})
}

func (s *Server) ageDistribution(w http.ResponseWriter, r *http.Request) {
	list, ok := s.allUsers(w)
	if !ok {
		return
	}
	now := users.NowTimeFunc()
	counts := make([]int, len(ageRanges))
	known := 0
	for _, u := range list {
		age, ok := u.Age(now)
		if !ok {
			continue
		}
		for i, ar := range ageRanges {
			if age >= ar.min && age <= ar.max {
				counts[i]++
				known++
				break
			}
		}
	}
	out := make([]ageCount, 0, len(ageRanges))
	for i, ar := range ageRanges {
		out = append(out, ageCount{AgeRange: ar.label, Count: counts[i], Percentage: percentage(counts[i], known)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"age_distribution": out, "total_users": known})
}

func periodKey(t time.Time, timeframe string) string {
	switch timeframe {
	case "daily":
		return t.Format("2006-01-02")
	case "weekly":
		y, wk := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, wk)
	case "yearly":
		return strconv.Itoa(t.Year())
	default:
		return t.Format("2006-01")
	}
}

func (s *Server) growth(timeframe string, list []*users.User) []growthPoint {
	counts := map[string]int{}
	for _, u := range list {
		counts[periodKey(u.CreatedAt.UTC(), timeframe)]++
	}
	periods := make([]string, 0, len(counts))
	for p := range counts {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	out := make([]growthPoint, 0, len(periods))
	total := 0
	for _, p := range periods {
		total += counts[p]
		out = append(out, growthPoint{Period: p, Count: counts[p], Cumulative: total})
	}
	return out
}

func validTimeframe(tf string) bool {
	switch tf {
	case "daily", "weekly", "monthly", "yearly":
		return true
	}
	return false
}

func (s *Server) userGrowth(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "monthly"
	}
	if !validTimeframe(timeframe) {
		writeDetail(w, http.StatusBadRequest, "Timeframe must be one of daily, weekly, monthly, yearly")
		return
	}
	list, ok := s.allUsers(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"growth_data": s.growth(timeframe, list), "timeframe": timeframe})
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "monthly"
	}
	if !validTimeframe(period) {
		writeDetail(w, http.StatusBadRequest, "Period must be one of daily, weekly, monthly, yearly")
		return
	}
	list, ok := s.allUsers(w)
	if !ok {
		return
	}
	stats, err := s.users.Stats()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Error fetching dashboard data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":        period,
		"registrations": s.growth(period, list),
		"by_status":     stats.ByStatus,
		"by_role":       stats.ByRole,
	})
}

func (s *Server) activities(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeValidation(w, "query", "limit", "ensure this value is between 1 and 100")
			return
		}
		limit = n
	}
	list, ok := s.allUsers(w)
	if !ok {
		return
	}

	out := make([]activity, 0, len(list)*2)
	for _, u := range list {
		out = append(out, activity{Type: "registration", UserID: u.ID, Email: u.Email, Message: u.Email + " joined", Timestamp: u.CreatedAt})
		if u.UpdatedAt.After(u.CreatedAt) {
			out = append(out, activity{Type: "update", UserID: u.ID, Email: u.Email, Message: u.Email + " was updated", Timestamp: u.UpdatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": out})
}
