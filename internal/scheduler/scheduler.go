package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/config"
	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/service/whatsapp"
)

// Reconciler repairs the stock dispatch totals of a day.
type Reconciler interface {
	Reconcile(ctx context.Context, date string) ([]models.DispatchCorrection, error)
}

// Reporter builds and exports the daily closing report.
type Reporter interface {
	DailyReport(ctx context.Context, date string) (string, error)
	ExportToSheets(ctx context.Context, date string) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	schedule   string
	location   *time.Location
	reconciler Reconciler
	reporter   Reporter
	notifier   whatsapp.Notifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewScheduler creates a new scheduler instance. notifier may be nil when
// WhatsApp delivery is not configured.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, reconciler Reconciler, reporter Reporter, notifier whatsapp.Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		schedule:   cfg.CronSchedule,
		location:   loc,
		reconciler: reconciler,
		reporter:   reporter,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Start registers the daily close job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.dailyClose); err != nil {
		return fmt.Errorf("schedule daily close %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) dailyClose() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunDailyClose(ctx); err != nil {
		s.logger.Error("daily close finished with errors", zap.Error(err))
	}
}

// RunDailyClose reconciles today's dispatch totals, exports the day to Sheets
// and sends the report text. A failing step is logged and the remaining steps
// still run.
func (s *Scheduler) RunDailyClose(ctx context.Context) error {
	date := models.Today(s.now(), s.location)
	logger := s.logger.With(zap.String("date", date))
	logger.Info("running daily close")

	var errs []error

	corrections, err := s.reconciler.Reconcile(ctx, date)
	if err != nil {
		errs = append(errs, fmt.Errorf("reconcile: %w", err))
	} else if len(corrections) > 0 {
		logger.Warn("dispatch totals corrected", zap.Int("products", len(corrections)))
	}

	rows, err := s.reporter.ExportToSheets(ctx, date)
	if err != nil {
		errs = append(errs, fmt.Errorf("sheets export: %w", err))
	} else if rows > 0 {
		logger.Info("closing exported", zap.Int("rows", rows))
	}

	if s.notifier != nil {
		report, err := s.reporter.DailyReport(ctx, date)
		if err != nil {
			errs = append(errs, fmt.Errorf("build report: %w", err))
		} else if err := s.notifier.Notify(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}

	return errors.Join(errs...)
}
