package features

import (
	"context"
	"time"
)

// StartAutoRefresh fetches flags every interval until cancelled. Starting
// again replaces the running refresher, so at most one is ever active. The
// returned function stops this refresher; it is a no-op once the refresher
// has been replaced or stopped.
func (s *Store) StartAutoRefresh(token string) (cancel func()) {
	ctx, stop := context.WithCancel(context.Background())

	s.timerMu.Lock()
	if s.stop != nil {
		s.stop()
	}
	s.timerID++
	id := s.timerID
	s.stop = stop
	s.timerMu.Unlock()

	go s.refreshLoop(ctx, token)
	s.log.Debugw("feature auto-refresh started", "interval", s.interval)

	return func() {
		s.timerMu.Lock()
		defer s.timerMu.Unlock()
		if s.timerID == id && s.stop != nil {
			s.stop()
			s.stop = nil
		}
		stop()
	}
}

// StopAutoRefresh stops the running refresher, if any.
func (s *Store) StopAutoRefresh() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// ActiveTimers reports how many refreshers are running: zero or one.
func (s *Store) ActiveTimers() int {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.stop != nil {
		return 1
	}
	return 0
}

func (s *Store) refreshLoop(ctx context.Context, token string) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.FetchFeatures(ctx, token); err != nil {
				s.log.Debugw("scheduled flag refresh failed", "error", err)
			}
		}
	}
}
