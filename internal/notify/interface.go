// Package notify delivers reminder messages to the user over outbound
// channels. Channels are send only, incoming traffic arrives through the
// HTTP event endpoints instead.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/bytedance/gg/gmap"

	"github.com/yumeai/yume/internal/config"
	"github.com/yumeai/yume/internal/pkg/logs"
)

type Type string

const (
	Telegram Type = "telegram"
	Console  Type = "console"
)

type Notifier interface {
	ID() string
	Type() Type

	// Send delivers a reminder text to the user.
	Send(ctx context.Context, text string) error
}

// NewNotifier constructs a notifier from its channel config entry.
func NewNotifier(id string, cfg *config.ChannelConfig) (Notifier, error) {
	switch Type(cfg.Type) {
	case Telegram:
		return NewTelegram(id, cfg)
	case Console:
		return NewConsole(id), nil
	default:
		return nil, errors.New("unknown notifier type: " + cfg.Type)
	}
}

type Registry struct {
	notifiers map[string]Notifier
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		notifiers: make(map[string]Notifier, 4),
	}
}

func (r *Registry) Register(n Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifiers[n.ID()] = n
}

func (r *Registry) Get(id string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifiers[id]
	if !ok {
		return nil, errors.New("notifier not found")
	}
	return n, nil
}

func (r *Registry) List() []Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return gmap.ToSlice(r.notifiers, func(_ string, n Notifier) Notifier { return n })
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notifiers)
}

// Broadcast sends the text over every registered notifier. Delivery errors
// are logged per channel; the call fails only when no channel accepted the
// message.
func (r *Registry) Broadcast(ctx context.Context, text string) error {
	notifiers := r.List()
	if len(notifiers) == 0 {
		return errors.New("no notifiers registered")
	}

	delivered := 0
	for _, n := range notifiers {
		if err := n.Send(ctx, text); err != nil {
			logs.CtxWarn(ctx, "[notify] send via %s failed: %v", n.ID(), err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return errors.New("all notifiers failed to deliver")
	}
	return nil
}
