// services/scheduler.go
package services

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// StartCatalogSync pulls the catalog from src every interval (and once on
// start). The returned scheduler must be shut down by the caller.
func (s *CatalogService) StartCatalogSync(ctx context.Context, src CatalogSource, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.SyncFrom(ctx, src); err != nil {
				log.Error("[Scheduler] catalog sync failed", "err", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	log.Info("🗓️ catalog sync scheduled", "every", interval)
	return sched, nil
}
