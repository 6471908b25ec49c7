package interpreter

import (
	"context"
	"fmt"
	"time"

	"github.com/username/holiday-assistant/internal/holiday"
	"go.uber.org/zap"
)

// Answer is the outcome of interpreting one question.
// When Matched is false the question is not a calendar query and the caller
// should hand it to another answerer.
type Answer struct {
	Matched bool
	Text    string
	Intent  Intent
}

// Interpreter answers holiday-calendar questions from a Store.
// It keeps no per-call state and is safe for concurrent use.
type Interpreter struct {
	store  holiday.Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates an Interpreter reading from store
func New(store holiday.Store, logger *zap.Logger) *Interpreter {
	return &Interpreter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Interpret answers question using the wall clock for missing years.
// The clock is read once per call.
func (in *Interpreter) Interpret(ctx context.Context, question string) (Answer, error) {
	return in.InterpretAt(ctx, question, in.now())
}

// InterpretAt answers question treating now as the current time.
// Store failures are returned as errors; malformed dates are answered with a
// friendly message instead.
func (in *Interpreter) InterpretAt(ctx context.Context, question string, now time.Time) (Answer, error) {
	intent, ruleName := classify(question, now)

	in.logger.Debug("Question classified",
		zap.String("rule", ruleName),
		zap.Stringer("kind", intent.Kind),
		zap.Int("year", intent.Year),
		zap.Int("month", int(intent.Month)),
		zap.Int("day", intent.Day))

	answer := Answer{Matched: intent.Kind != KindNoMatch, Intent: intent}

	switch intent.Kind {
	case KindNoMatch:
		return answer, nil

	case KindParseFailure:
		answer.Text = renderFailure(intent.Failure)
		return answer, nil

	case KindYear:
		holidays, err := in.store.HolidaysInYear(ctx, intent.Year)
		if err != nil {
			return Answer{}, fmt.Errorf("failed to look up holidays in %d: %w", intent.Year, err)
		}
		answer.Text = renderList(fmt.Sprintf("%d", intent.Year), holidays)

	case KindMonth:
		holidays, err := in.store.HolidaysInMonth(ctx, intent.Year, intent.Month)
		if err != nil {
			return Answer{}, fmt.Errorf("failed to look up holidays in %s %d: %w", intent.Month, intent.Year, err)
		}
		answer.Text = renderList(fmt.Sprintf("%s %d", intent.MonthLabel, intent.Year), holidays)

	case KindDate:
		h, err := in.store.HolidayForDate(ctx, intent.Date())
		if err != nil {
			return Answer{}, fmt.Errorf("failed to look up holiday on %s: %w", intent.Date().Format("2006-01-02"), err)
		}
		answer.Text = renderDate(intent, h)
	}

	return answer, nil
}
