package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/wordcards/internal/config"
)

// Target is the owner of the study sessions the jobs act on
type Target interface {
	// Rollover clears done flags left from an earlier day
	Rollover(ctx context.Context)
	// RefreshFavorites reloads the favorites mirrors
	RefreshFavorites(ctx context.Context)
}

// Dispatcher runs a job on the owner's control loop
type Dispatcher interface {
	Dispatch(job func(ctx context.Context))
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler  *gocron.Scheduler
	cfg        config.SchedulerConfig
	target     Target
	dispatcher Dispatcher
}

// New creates a new scheduler instance running in the local time zone
func New(cfg config.SchedulerConfig, target Target, dispatcher Dispatcher) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.Local),
		cfg:        cfg,
		target:     target,
		dispatcher: dispatcher,
	}
}

// Start registers the jobs and runs them in a non-blocking manner
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		zap.S().Info("scheduler disabled")
		return nil
	}

	at := s.cfg.RolloverAt
	if at == "" {
		at = "00:00"
	}
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.rollover); err != nil {
		return fmt.Errorf("schedule rollover (at: %s): %w", at, err)
	}

	if s.cfg.FavoritesRefresh > 0 {
		_, err := s.scheduler.Every(s.cfg.FavoritesRefresh).WaitForSchedule().Do(s.refreshFavorites)
		if err != nil {
			return fmt.Errorf("schedule favorites refresh (every: %s): %w", s.cfg.FavoritesRefresh, err)
		}
	}

	s.scheduler.StartAsync()
	zap.S().Infow("scheduler started", "rollover_at", at, "favorites_refresh", s.cfg.FavoritesRefresh)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Jobs is the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}

func (s *Scheduler) rollover() {
	zap.S().Debug("dispatching study day rollover")
	s.dispatcher.Dispatch(s.target.Rollover)
}

func (s *Scheduler) refreshFavorites() {
	zap.S().Debug("dispatching favorites refresh")
	s.dispatcher.Dispatch(s.target.RefreshFavorites)
}
