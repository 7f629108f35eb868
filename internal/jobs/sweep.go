package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/safehaven/server/internal/safety"
	"github.com/sirupsen/logrus"
)

// Sweeper periodically marks overdue pending check-ins as missed and
// raises the resulting alerts.
type Sweeper struct {
	cron    *cron.Cron
	service *safety.Service
	log     *logrus.Logger
}

func NewSweeper(service *safety.Service, log *logrus.Logger) *Sweeper {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
	))
	return &Sweeper{
		cron:    c,
		service: service,
		log:     log,
	}
}

// Start schedules the sweep at the given interval and begins running it.
func (s *Sweeper) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	_, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	s.log.WithField("interval", interval.String()).Info("check-in sweep started")
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("check-in sweep stopped")
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	missed, err := s.service.SweepMissedCheckIns(ctx)
	if err != nil {
		s.log.WithError(err).Error("check-in sweep failed")
		return
	}
	if missed > 0 {
		s.log.WithField("missed", missed).Info("check-in sweep marked overdue check-ins")
	}
}
