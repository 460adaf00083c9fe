package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

const helpMessage = "Supported commands: /dates, /summary <date>, /export [date ...], /help."

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	Summary(ctx context.Context, date string) (string, error)
	DailySummary(ctx context.Context) (string, error)
	Export(ctx context.Context, dates []string) (int, error)
}

// DateSource lists the dates currently open to customers.
type DateSource interface {
	VisibleDates(ctx context.Context) ([]string, error)
}

// Dispatcher executes parsed owner commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	reporting ReportingAdapter
	dates     DateSource
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(reporting ReportingAdapter, dates DateSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reporting: reporting,
		dates:     dates,
		logger:    logger,
	}
}

// HandleCommand runs the command. Domain failures such as an unconfigured
// export become the reply; only infrastructure failures are returned.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	reply, err := s.run(ctx, cmd)
	if err != nil {
		var domainErr *models.Error
		if errors.As(err, &domainErr) {
			return domainErr.Error(), nil
		}
		return "", fmt.Errorf("command %s: %w", cmd.Type, err)
	}
	return reply, nil
}

func (s *Service) run(ctx context.Context, cmd models.Command) (string, error) {
	switch cmd.Type {
	case models.CommandDates:
		dates, err := s.dates.VisibleDates(ctx)
		if err != nil {
			return "", err
		}
		if len(dates) == 0 {
			return "No open order dates.", nil
		}
		return "Open dates: " + strings.Join(dates, ", "), nil
	case models.CommandSummary:
		if len(cmd.Args) == 0 {
			return s.reporting.DailySummary(ctx)
		}
		parts := make([]string, 0, len(cmd.Args))
		for _, date := range cmd.Args {
			summary, err := s.reporting.Summary(ctx, date)
			if err != nil {
				return "", err
			}
			parts = append(parts, summary)
		}
		return strings.Join(parts, "\n\n"), nil
	case models.CommandExport:
		rows, err := s.reporting.Export(ctx, cmd.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Production sheet updated with %d rows.", rows), nil
	case models.CommandHelp:
		return helpMessage, nil
	default:
		return "Unknown command. " + helpMessage, nil
	}
}
