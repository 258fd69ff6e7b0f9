package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yumeai/yume/internal/consts"
)

var janitorParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate applies defaults and rejects settings the runtime cannot honor.
func (c *Config) Validate() error {
	if c.Server.Bind == "" {
		c.Server.Bind = "0.0.0.0:8200"
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 60
	}
	if c.Server.MetricsBind == "" {
		c.Server.MetricsBind = "0.0.0.0:9200"
	}

	if c.Scheduler.UserTimezone == "" {
		c.Scheduler.UserTimezone = "Europe/Berlin"
	}
	if _, err := time.LoadLocation(c.Scheduler.UserTimezone); err != nil {
		return fmt.Errorf("invalid user_timezone %q: %w", c.Scheduler.UserTimezone, err)
	}
	if c.Scheduler.MinLeadMinutes <= 0 {
		c.Scheduler.MinLeadMinutes = 15
	}
	if c.Scheduler.NearbyMinutes <= 0 {
		c.Scheduler.NearbyMinutes = 15
	}
	if c.Scheduler.DebounceSec <= 0 {
		c.Scheduler.DebounceSec = 60
	}
	if c.Scheduler.JanitorCron == "" {
		c.Scheduler.JanitorCron = "0 */12 * * *"
	}
	if _, err := janitorParser.Parse(c.Scheduler.JanitorCron); err != nil {
		return fmt.Errorf("invalid janitor_cron %q: %w", c.Scheduler.JanitorCron, err)
	}
	if c.Scheduler.LedgerSize <= 0 {
		c.Scheduler.LedgerSize = 5
	}

	if c.Memory.Store == "" {
		c.Memory.Store = filepath.Join(consts.DefaultDataDir(), "memories.json")
	}
	if c.Memory.PruneAfterDays <= 0 {
		c.Memory.PruneAfterDays = 7
	}

	if c.RunLog.Dir == "" {
		c.RunLog.Dir = consts.DefaultDataDir()
	}
	if c.RunLog.RetentionDays <= 0 {
		c.RunLog.RetentionDays = 30
	}

	if c.Suggest.Model == "" {
		c.Suggest.Model = "gpt-4o-mini"
	}

	return nil
}
