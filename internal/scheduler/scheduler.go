package scheduler

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Scheduler runs enabled jobs on their cron specs until its context ends
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	metrics *metrics.Metrics
	jobs    []Job
}

// New creates a scheduler evaluating specs in loc. A job whose previous run
// is still going skips the tick.
func New(loc *time.Location, log *logger.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:  log,
		metrics: m,
	}
}

// Register adds job if it is enabled
func (s *Scheduler) Register(ctx context.Context, job Job) error {
	if !job.Enable() {
		s.logger.Infow("job disabled", "job", job.Name())
		return nil
	}
	_, err := s.cron.AddFunc(job.Spec(), func() {
		s.run(ctx, job)
	})
	if err != nil {
		return err
	}
	s.jobs = append(s.jobs, job)
	s.logger.Infow("job registered", "job", job.Name(), "spec", job.Spec())
	return nil
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	start := time.Now()
	result := "ok"
	if err := job.Do(ctx); err != nil {
		result = "error"
		s.logger.Errorw("job failed", "job", job.Name(), "error", err)
	}
	s.metrics.JobRuns.WithLabelValues(job.Name(), result).Inc()
	s.logger.Debugw("job finished", "job", job.Name(), "result", result, "duration", time.Since(start))
}

// Jobs returns the registered jobs
func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// Run starts the cron loop and blocks until ctx is done, then waits for
// running jobs to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Infow("scheduler stopped")
	return nil
}
