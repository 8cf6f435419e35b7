// Package scheduler fires the daily campaign run.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/entity"
	"brandcast/services/campaign/internal/usecase"

	"github.com/robfig/cron/v3"
)

type Runner interface {
	RunCampaign(ctx context.Context, trigger entity.Trigger) (*entity.CampaignReport, error)
}

type Scheduler struct {
	cron   *cron.Cron
	spec   string
	entry  cron.EntryID
	runner Runner
	logger *logger.Logger

	ctx context.Context
}

// New parses a standard five-field cron expression evaluated in timezone
// ("Local", "UTC" or an IANA name).
func New(spec, timezone string, runner Runner, log *logger.Logger) (*Scheduler, error) {
	loc, err := loadLocation(timezone)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		spec:   spec,
		runner: runner,
		logger: log,
		ctx:    context.Background(),
	}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{log}),
	)
	s.entry, err = s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return nil, fmt.Errorf("invalid campaign schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing. Runs started by the scheduler are cancelled with ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("[SCHEDULER] Campaign schedule %q active, next run at %s", s.spec, s.Next().Format(time.RFC3339))
}

// Stop halts the timer and returns a context done once a running tick ends.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) Spec() string {
	return s.spec
}

// Next is the upcoming fire time, zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) tick() {
	s.logger.Info("[SCHEDULER] Scheduled campaign run firing")
	report, err := s.runner.RunCampaign(s.ctx, entity.TriggerSchedule)
	if errors.Is(err, usecase.ErrRunInProgress) {
		s.logger.Warn("[SCHEDULER] Skipping scheduled run: another run is in progress")
		return
	}
	if err != nil {
		s.logger.Error("[SCHEDULER] Scheduled run failed: %v", err)
		return
	}
	s.logger.Info("[SCHEDULER] Scheduled run %s finished with status %s", report.ID, report.Status)
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid campaign timezone %q: %w", name, err)
	}
	return loc, nil
}

type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "wake" {
		return
	}
	l.log.Info("[SCHEDULER] cron %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("[SCHEDULER] cron %s: %v %v", msg, err, keysAndValues)
}
