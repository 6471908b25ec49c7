package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/holiday-assistant/internal/interpreter"
	"github.com/username/holiday-assistant/internal/llm"
	"github.com/username/holiday-assistant/internal/metrics"
	"go.uber.org/zap"
)

const (
	RouteCalendar = "calendar"
	RouteLLM      = "llm"

	// CalendarSource is reported as the source of every calendar answer
	CalendarSource = "Holiday Database"
)

// ErrEmptyQuestion is returned for blank questions
var ErrEmptyQuestion = errors.New("no question provided")

// Interpreter answers calendar questions
type Interpreter interface {
	Interpret(ctx context.Context, question string) (interpreter.Answer, error)
}

// Reply is the answer handed back to users
type Reply struct {
	Answer  string
	Sources []string
	Route   string
}

// Assistant tries the holiday calendar first and hands everything else to
// the fallback answerer.
type Assistant struct {
	calendar Interpreter
	fallback llm.Answerer
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates an Assistant. m may be nil.
func New(calendar Interpreter, fallback llm.Answerer, m *metrics.Metrics, logger *zap.Logger) *Assistant {
	return &Assistant{
		calendar: calendar,
		fallback: fallback,
		metrics:  m,
		logger:   logger,
	}
}

// Ask answers one question
func (a *Assistant) Ask(ctx context.Context, question string) (*Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	start := time.Now()

	answer, err := a.calendar.Interpret(ctx, question)
	if err != nil {
		a.observeFailure(RouteCalendar)
		return nil, fmt.Errorf("failed to answer from calendar: %w", err)
	}

	if answer.Matched {
		a.observe(RouteCalendar, answer.Intent.Kind.String(), start)
		a.logger.Info("Answered from calendar",
			zap.String("question", question),
			zap.Stringer("kind", answer.Intent.Kind))

		return &Reply{
			Answer:  answer.Text,
			Sources: []string{CalendarSource},
			Route:   RouteCalendar,
		}, nil
	}

	resp, err := a.fallback.Answer(ctx, question)
	if err != nil {
		a.observeFailure(RouteLLM)
		return nil, fmt.Errorf("failed to answer from documents: %w", err)
	}
	a.observe(RouteLLM, answer.Intent.Kind.String(), start)
	a.logger.Info("Answered from documents",
		zap.String("question", question),
		zap.Int("sources", len(resp.Sources)))

	sources := resp.Sources
	if sources == nil {
		sources = []string{}
	}
	return &Reply{
		Answer:  resp.Text,
		Sources: sources,
		Route:   RouteLLM,
	}, nil
}

func (a *Assistant) observe(route, kind string, start time.Time) {
	if a.metrics != nil {
		a.metrics.ObserveAnswer(route, kind, time.Since(start))
	}
}

func (a *Assistant) observeFailure(route string) {
	if a.metrics != nil {
		a.metrics.ObserveFailure(route)
	}
}
