package suggest

import (
	"context"

	"github.com/yumeai/yume/internal/scheduler"
)

// MockSuggester returns canned answers, used by tests.
type MockSuggester struct {
	Run   scheduler.NextRun
	Err   error
	Calls int

	// LastInput records the most recent Suggest input.
	LastInput Input
}

var _ Suggester = (*MockSuggester)(nil)

func (m *MockSuggester) Suggest(_ context.Context, in Input) (scheduler.NextRun, error) {
	m.Calls++
	m.LastInput = in
	if m.Err != nil {
		return scheduler.NextRun{}, m.Err
	}
	return m.Run, nil
}
