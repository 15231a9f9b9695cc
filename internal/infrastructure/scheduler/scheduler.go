package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"lendingops-backend/pkg/logger"
)

// ProposalExpirer closes open proposals whose last activity is before cutoff.
type ProposalExpirer interface {
	ExpireStale(ctx context.Context, cutoff time.Time) (int, error)
}

// OverdueMarker flags scheduled entries that fell due before asOf without being settled.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// Scheduler runs the background sweeps on a seconds-resolution cron.
type Scheduler struct {
	cron    *cron.Cron
	expirer ProposalExpirer
	markers []OverdueMarker
	ttl     time.Duration
	log     *logger.Logger
	now     func() time.Time
	timeout time.Duration
}

func New(expirer ProposalExpirer, ttl time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		expirer: expirer,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		timeout: time.Minute,
	}
}

// Register adds the proposal sweep at sweepSpec (six fields, seconds first).
func (s *Scheduler) Register(sweepSpec string) error {
	if _, err := s.cron.AddFunc(sweepSpec, s.SweepNow); err != nil {
		return fmt.Errorf("register proposal sweep %q: %w", sweepSpec, err)
	}
	return nil
}

// RegisterOverdue adds the due-date sweep at spec, run over every marker in turn.
func (s *Scheduler) RegisterOverdue(spec string, markers ...OverdueMarker) error {
	if _, err := s.cron.AddFunc(spec, s.MarkOverdueNow); err != nil {
		return fmt.Errorf("register overdue sweep %q: %w", spec, err)
	}
	s.markers = append(s.markers, markers...)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops scheduling and waits for a running sweep, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// SweepNow expires every open proposal idle for longer than the TTL.
func (s *Scheduler) SweepNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cutoff := s.now().UTC().Add(-s.ttl)
	n, err := s.expirer.ExpireStale(ctx, cutoff)
	if err != nil {
		s.log.WithError(err).WithField("cutoff", cutoff).Error("proposal sweep failed")
		return
	}
	if n > 0 {
		s.log.WithFields(map[string]any{"expired": n, "cutoff": cutoff}).Info("proposal sweep")
	}
}

// MarkOverdueNow runs every marker once. A failing marker does not stop the others.
func (s *Scheduler) MarkOverdueNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	asOf := s.now().UTC()
	total := 0
	for _, m := range s.markers {
		n, err := m.MarkOverdue(ctx, asOf)
		total += n
		if err != nil {
			s.log.WithError(err).WithField("as_of", asOf).Error("overdue sweep failed")
		}
	}
	if total > 0 {
		s.log.WithFields(map[string]any{"overdue": total, "as_of": asOf}).Info("overdue sweep")
	}
}
