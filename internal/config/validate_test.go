package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_AppliesDefaults(t *testing.T) {
	var c Config
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if c.Server.Bind != "0.0.0.0:8200" {
		t.Fatalf("Bind default: got %q", c.Server.Bind)
	}
	if c.Scheduler.UserTimezone != "Europe/Berlin" {
		t.Fatalf("UserTimezone default: got %q", c.Scheduler.UserTimezone)
	}
	if c.Scheduler.MinLeadMinutes != 15 || c.Scheduler.NearbyMinutes != 15 {
		t.Fatalf("lead/nearby defaults: got %d/%d", c.Scheduler.MinLeadMinutes, c.Scheduler.NearbyMinutes)
	}
	if c.Scheduler.DebounceSec != 60 {
		t.Fatalf("DebounceSec default: got %d", c.Scheduler.DebounceSec)
	}
	if c.Scheduler.JanitorCron != "0 */12 * * *" {
		t.Fatalf("JanitorCron default: got %q", c.Scheduler.JanitorCron)
	}
	if c.Memory.PruneAfterDays != 7 || c.RunLog.RetentionDays != 30 {
		t.Fatalf("retention defaults: got %d/%d", c.Memory.PruneAfterDays, c.RunLog.RetentionDays)
	}
	if c.Suggest.Model != "gpt-4o-mini" {
		t.Fatalf("Model default: got %q", c.Suggest.Model)
	}
}

func TestValidate_RejectsBadTimezone(t *testing.T) {
	c := Config{}
	c.Scheduler.UserTimezone = "Mars/Olympus"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for bad timezone")
	}
}

func TestValidate_RejectsBadJanitorCron(t *testing.T) {
	c := Config{}
	c.Scheduler.JanitorCron = "every twelve hours"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for bad cron expression")
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw := `
server:
  bind: "127.0.0.1:9999"
scheduler:
  user_timezone: "America/New_York"
  min_lead_minutes: 20
channels:
  tg-main:
    type: telegram
    enabled: true
    config:
      token: "abc"
      chat_id: 42
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Bind != "127.0.0.1:9999" {
		t.Fatalf("Bind: got %q", cfg.Server.Bind)
	}
	if cfg.Scheduler.UserTimezone != "America/New_York" || cfg.Scheduler.MinLeadMinutes != 20 {
		t.Fatalf("scheduler: got %+v", cfg.Scheduler)
	}
	// Unset fields still default.
	if cfg.Scheduler.NearbyMinutes != 15 {
		t.Fatalf("NearbyMinutes default: got %d", cfg.Scheduler.NearbyMinutes)
	}
	ch, ok := cfg.Channels["tg-main"]
	if !ok || ch.ID != "tg-main" || ch.Type != "telegram" || !ch.Enabled {
		t.Fatalf("channel: got %+v", ch)
	}
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatal("expected error when config already exists")
	}

	if _, err := Load(path); err != nil {
		t.Fatalf("default config must load cleanly: %v", err)
	}
}
