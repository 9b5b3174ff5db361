package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/oilledger/internal/config"
	"github.com/mamadbah2/oilledger/internal/domain/models"
)

type fakeReconciler struct {
	dates []string
	err   error
}

func (f *fakeReconciler) Reconcile(_ context.Context, date string) ([]models.DispatchCorrection, error) {
	f.dates = append(f.dates, date)
	return []models.DispatchCorrection{{ProductID: 1, Recorded: 2, Logged: 5}}, f.err
}

type fakeReporter struct {
	exported  []string
	exportErr error
}

func (f *fakeReporter) DailyReport(_ context.Context, date string) (string, error) {
	return "Stock report " + date, nil
}

func (f *fakeReporter) ExportToSheets(_ context.Context, date string) (int, error) {
	f.exported = append(f.exported, date)
	return 3, f.exportErr
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

func newTestScheduler(t *testing.T, notifier *fakeNotifier) (*Scheduler, *fakeReconciler, *fakeReporter) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	rec := &fakeReconciler{}
	rep := &fakeReporter{}
	s := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *"}, loc, rec, rep, nil, nil)
	if notifier != nil {
		s.notifier = notifier
	}
	// 20:00 UTC is already the next day in Kolkata.
	s.now = func() time.Time { return time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC) }
	return s, rec, rep
}

func TestRunDailyClose(t *testing.T) {
	notifier := &fakeNotifier{}
	s, rec, rep := newTestScheduler(t, notifier)

	require.NoError(t, s.RunDailyClose(context.Background()))

	assert.Equal(t, []string{"2024-01-02"}, rec.dates)
	assert.Equal(t, []string{"2024-01-02"}, rep.exported)
	assert.Equal(t, []string{"Stock report 2024-01-02"}, notifier.messages)
}

func TestRunDailyCloseContinuesPastFailures(t *testing.T) {
	notifier := &fakeNotifier{}
	s, rec, rep := newTestScheduler(t, notifier)
	rec.err = errors.New("store down")
	rep.exportErr = errors.New("quota exceeded")

	err := s.RunDailyClose(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, rec.err)
	assert.ErrorIs(t, err, rep.exportErr)
	assert.Len(t, notifier.messages, 1)
}

func TestRunDailyCloseWithoutNotifier(t *testing.T) {
	s, _, rep := newTestScheduler(t, nil)

	require.NoError(t, s.RunDailyClose(context.Background()))
	assert.Len(t, rep.exported, 1)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(config.ReportingConfig{CronSchedule: "every evening"}, time.UTC, &fakeReconciler{}, &fakeReporter{}, nil, nil)
	require.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *"}, time.UTC, &fakeReconciler{}, &fakeReporter{}, nil, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
