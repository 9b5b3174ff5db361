package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/domain/models"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

const helpText = "Oil ledger commands:\n" +
	"report - today's closing report\n" +
	"report yesterday\n" +
	"report YYYY-MM-DD"

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	DailyReport(ctx context.Context, date string) (string, error)
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	reporting ReportingAdapter
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher. Relative dates are resolved in loc.
func NewService(reporting ReportingAdapter, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		reporting: reporting,
		location:  loc,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs cmd on behalf of sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandReport:
		date, err := s.resolveDate(cmd.Args)
		if err != nil {
			return "", err
		}
		report, err := s.reporting.DailyReport(ctx, date)
		if err != nil {
			return "", fmt.Errorf("report for %s: %w", date, err)
		}
		return report, nil
	case models.CommandHelp:
		return helpText, nil
	default:
		return "Unknown command.\n" + helpText, nil
	}
}

func (s *Service) resolveDate(args []string) (string, error) {
	now := s.now()
	if len(args) == 0 {
		return models.Today(now, s.location), nil
	}

	switch args[0] {
	case "today":
		return models.Today(now, s.location), nil
	case "yesterday":
		return models.Today(now.In(s.location).AddDate(0, 0, -1), s.location), nil
	}

	date, err := models.ParseDate(args[0])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return date, nil
}
