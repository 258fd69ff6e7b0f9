package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/gg/gconv"
	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"github.com/yumeai/yume/internal/clock"
	"github.com/yumeai/yume/internal/pkg/logs"
	"github.com/yumeai/yume/internal/scheduler"
)

const systemPrompt = `You are part of a system that assists the user by keeping a memory about the user and sending messages to the user at relevant times based on their memories.
Your job is to analyze the stored memories and determine when the next memory reminder should be sent to the user.

Do the following:
1. Analyze the stored memories to determine the time and date for the next run. It is most important that you don't miss any relevant reminders.
2. Provide a brief reason for the chosen next run time that will be given as input to the reminder sending function.
3. If there are multiple relevant memories, choose the one with the closest upcoming date and include all relevant memories in the reason.
4. There may be memories without specific dates. Use your judgment to determine if they are relevant for scheduling a reminder.

The minimum time for the next run must be at least 15 minutes in the future. If no relevant memories are found, schedule a fallback reminder in 1 hour.

Respond with a single JSON object and nothing else:
{"next_run_time": "<RFC 3339 timestamp>", "reason": "<brief reason>", "topic": "<memory content of the relevant entries>"}`

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func ParseConfig(model string, configMap map[string]any) (*Config, error) {
	cfg := &Config{
		BaseURL: gconv.To[string](configMap["base_url"]),
		APIKey:  gconv.To[string](configMap["api_key"]),
		Model:   model,
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("suggest api_key is required")
	}
	if timeoutSec := gconv.To[float64](configMap["timeout"]); timeoutSec > 0 {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	} else {
		cfg.Timeout = 60 * time.Second
	}
	return cfg, nil
}

// OpenAISuggester proposes next runs through an OpenAI-compatible chat model.
type OpenAISuggester struct {
	config    Config
	clock     *clock.Clock
	chatModel *openai.ChatModel
}

var _ Suggester = (*OpenAISuggester)(nil)

func NewOpenAISuggester(ctx context.Context, cfg Config, c *clock.Clock) (*OpenAISuggester, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		ByAzure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return &OpenAISuggester{
		config:    cfg,
		clock:     c,
		chatModel: chatModel,
	}, nil
}

func (s *OpenAISuggester) Suggest(ctx context.Context, in Input) (scheduler.NextRun, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	input := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildUserPrompt(in)),
	}

	resp, err := s.chatModel.Generate(ctx, input)
	if err != nil {
		return scheduler.NextRun{}, fmt.Errorf("suggestion model call: %w", err)
	}

	run, err := parseSuggestion(resp.Content, s.clock)
	if err != nil {
		return scheduler.NextRun{}, err
	}

	logs.CtxInfo(ctx, "[suggest] model proposed %s: %s",
		run.NextRunTime.Format(time.RFC3339), run.Reason)
	return run, nil
}

func buildUserPrompt(in Input) string {
	var b strings.Builder
	b.WriteString(in.FormattedMemories)

	if len(in.RecentExecuted) > 0 {
		b.WriteString("\nRecently sent reminders (avoid repeating these topics too soon):\n")
		for _, e := range in.RecentExecuted {
			fmt.Fprintf(&b, "- %s at %s\n", e.Topic, e.ExecutedAt.Format("2006-01-02 15:04"))
		}
	}
	if in.ExtraContext != "" {
		b.WriteString("\n" + in.ExtraContext + "\n")
	}
	return b.String()
}

// suggestionPayload is the JSON shape the model is instructed to return.
type suggestionPayload struct {
	NextRunTime string `json:"next_run_time"`
	Reason      string `json:"reason"`
	Topic       string `json:"topic"`
}

// suggestionTimeLayouts are accepted timestamp shapes, tried in order.
// Models frequently drop the zone suffix, so bare layouts are included;
// the wall-clock fields are what matters in the single-timezone design.
var suggestionTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseSuggestion(content string, c *clock.Clock) (scheduler.NextRun, error) {
	raw := extractJSON(content)

	var payload suggestionPayload
	if err := sonic.UnmarshalString(raw, &payload); err != nil {
		return scheduler.NextRun{}, fmt.Errorf("parse suggestion payload: %w", err)
	}

	var (
		t   time.Time
		err error
	)
	for _, layout := range suggestionTimeLayouts {
		if t, err = time.ParseInLocation(layout, payload.NextRunTime, c.Location()); err == nil {
			break
		}
	}
	if err != nil {
		return scheduler.NextRun{}, fmt.Errorf("parse next_run_time %q: %w", payload.NextRunTime, err)
	}

	return scheduler.NextRun{
		NextRunTime: t,
		Reason:      payload.Reason,
		Topic:       payload.Topic,
	}, nil
}

// extractJSON strips markdown code fences and surrounding prose, keeping the
// outermost JSON object.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			return content[start : end+1]
		}
	}
	return content
}
