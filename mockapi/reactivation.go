package mockapi

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/articulink/admin-dashboard/users"
)

// DefaultReactivationInterval is how often RunAutoReactivation sweeps.
const DefaultReactivationInterval = time.Hour

// ReactivateExpired activates users whose temporary deactivation has ended.
func (s *Server) ReactivateExpired() (int, error) {
	n, err := s.users.ReactivateExpired(users.NowTimeFunc())
	if err != nil {
		log.Err(err).Msg("Auto-reactivation failed")
		return 0, err
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("Auto-reactivated users")
	}
	return n, nil
}

// RunAutoReactivation sweeps every interval until ctx is done.
func (s *Server) RunAutoReactivation(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReactivationInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("Auto-reactivation scheduler started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.ReactivateExpired()
		}
	}
}
