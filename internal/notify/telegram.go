package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/gg/gconv"
	"github.com/go-telegram/bot"

	"github.com/yumeai/yume/internal/config"
)

type TelegramConfig struct {
	Token  string
	ChatID int64
}

func ParseTelegramConfig(configMap map[string]any) (*TelegramConfig, error) {
	cfg := &TelegramConfig{
		Token:  gconv.To[string](configMap["token"]),
		ChatID: gconv.To[int64](configMap["chat_id"]),
	}
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is required")
	}
	return cfg, nil
}

// TelegramNotifier pushes reminder texts to a single chat. It never starts
// polling, the bot client is used for outbound calls only.
type TelegramNotifier struct {
	id     string
	config TelegramConfig
	bot    *bot.Bot
}

var _ Notifier = (*TelegramNotifier)(nil)

func NewTelegram(id string, chCfg *config.ChannelConfig) (*TelegramNotifier, error) {
	cfg, err := ParseTelegramConfig(chCfg.Config)
	if err != nil {
		return nil, fmt.Errorf("parse telegram config: %w", err)
	}

	tgBot, err := bot.New(cfg.Token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		id:     id,
		config: *cfg,
		bot:    tgBot,
	}, nil
}

func (n *TelegramNotifier) ID() string {
	return n.id
}

func (n *TelegramNotifier) Type() Type {
	return Telegram
}

func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.config.ChatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
