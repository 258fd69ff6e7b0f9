package suggest

import (
	"strings"
	"testing"
	"time"

	"github.com/yumeai/yume/internal/clock"
	"github.com/yumeai/yume/internal/scheduler"
)

func berlinClock(t *testing.T) *clock.Clock {
	t.Helper()
	c, err := clock.New("Europe/Berlin")
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	return c
}

func TestParseSuggestion_PlainJSON(t *testing.T) {
	c := berlinClock(t)

	run, err := parseSuggestion(`{"next_run_time":"2026-03-02T14:30:00+01:00","reason":"dentist soon","topic":"dentist"}`, c)
	if err != nil {
		t.Fatalf("parseSuggestion: %v", err)
	}
	want := time.Date(2026, 3, 2, 14, 30, 0, 0, c.Location())
	if !run.NextRunTime.Equal(want) {
		t.Fatalf("NextRunTime: got %v, want %v", run.NextRunTime, want)
	}
	if run.Reason != "dentist soon" || run.Topic != "dentist" {
		t.Fatalf("fields: got %+v", run)
	}
}

func TestParseSuggestion_CodeFenceAndBareTime(t *testing.T) {
	c := berlinClock(t)

	content := "Here is my answer:\n```json\n{\"next_run_time\": \"2026-03-02 14:30:00\", \"reason\": \"r\", \"topic\": \"t\"}\n```"
	run, err := parseSuggestion(content, c)
	if err != nil {
		t.Fatalf("parseSuggestion: %v", err)
	}
	// A zone-less timestamp is read in the user zone.
	want := time.Date(2026, 3, 2, 14, 30, 0, 0, c.Location())
	if !run.NextRunTime.Equal(want) {
		t.Fatalf("NextRunTime: got %v, want %v", run.NextRunTime, want)
	}
}

func TestParseSuggestion_Errors(t *testing.T) {
	c := berlinClock(t)

	if _, err := parseSuggestion("not json at all", c); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
	if _, err := parseSuggestion(`{"next_run_time":"soonish","reason":"r"}`, c); err == nil {
		t.Fatal("expected error for unparsable timestamp")
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("gpt-4o-mini", map[string]any{
		"api_key":  "sk-test",
		"base_url": "https://example.com/v1",
		"timeout":  5,
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" || cfg.BaseURL != "https://example.com/v1" {
		t.Fatalf("config: got %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout: got %v", cfg.Timeout)
	}

	if _, err := ParseConfig("m", map[string]any{}); err == nil {
		t.Fatal("expected error for missing api_key")
	}
}

func TestBuildUserPrompt_IncludesExecutedHistory(t *testing.T) {
	executedAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	in := Input{
		FormattedMemories: "Stored memories:\n",
		RecentExecuted: []scheduler.ExecutedReminder{
			{ExecutedAt: executedAt, Topic: "morning pills"},
		},
		ExtraContext: "User is travelling this week.",
	}

	out := buildUserPrompt(in)
	if !strings.Contains(out, "Stored memories:") {
		t.Fatalf("memories missing:\n%s", out)
	}
	if !strings.Contains(out, "morning pills at 2026-03-01 08:00") {
		t.Fatalf("executed history missing:\n%s", out)
	}
	if !strings.Contains(out, "User is travelling this week.") {
		t.Fatalf("extra context missing:\n%s", out)
	}
}
