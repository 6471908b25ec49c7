package llm

import (
	"context"
	"errors"
)

// ErrNoCompletion is returned when the model answers without any content
var ErrNoCompletion = errors.New("no completion received from LLM")

// Response is a free-form answer together with the documents it was drawn from
type Response struct {
	Text    string
	Sources []string
}

// Answerer answers questions the holiday calendar cannot
type Answerer interface {
	Answer(ctx context.Context, question string) (*Response, error)
}

// StaticAnswerer replies with a fixed text. It stands in when no model is configured.
type StaticAnswerer struct {
	Text string
}

// NewStaticAnswerer creates a StaticAnswerer with the default reply
func NewStaticAnswerer() *StaticAnswerer {
	return &StaticAnswerer{Text: "I can only answer questions about holidays right now."}
}

func (s *StaticAnswerer) Answer(_ context.Context, _ string) (*Response, error) {
	return &Response{Text: s.Text, Sources: []string{}}, nil
}
