package notify

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// ConsoleNotifier writes reminders to stdout. Useful for local runs and as
// a last-resort channel when nothing else is configured.
type ConsoleNotifier struct {
	id string
	mu sync.Mutex
}

var _ Notifier = (*ConsoleNotifier)(nil)

func NewConsole(id string) *ConsoleNotifier {
	return &ConsoleNotifier{id: id}
}

func (n *ConsoleNotifier) ID() string {
	return n.id
}

func (n *ConsoleNotifier) Type() Type {
	return Console
}

func (n *ConsoleNotifier) Send(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(os.Stdout, "[reminder] %s\n", text)
	return err
}
