package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Sweeper periodically expires idle sessions.
type Sweeper struct {
	service  Service
	interval time.Duration
	cron     *cron.Cron
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		cron:     cron.New(),
	}
}

// Run schedules the sweep and blocks until ctx is done. A non-positive
// interval disables sweeping.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		log.Info("Session sweeper disabled")
		<-ctx.Done()
		return nil
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule session sweeper: %w", err)
	}
	log.Infof("Sweeping idle sessions every %s", s.interval)
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info("Session sweeper stopped")
	return nil
}

func (s *Sweeper) Sweep(ctx context.Context) {
	removed, err := s.service.ExpireIdle(ctx)
	if err != nil {
		log.Errorf("failed to sweep idle sessions: %v", err)
		return
	}
	if removed > 0 {
		log.Infof("Expired %d idle wizard session(s)", removed)
	}
}
