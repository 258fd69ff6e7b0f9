package config

type (
	Config struct {
		Server    ServerConfig             `yaml:"server"`
		Logging   LoggingConfig            `yaml:"logging"`
		Scheduler SchedulerConfig          `yaml:"scheduler"`
		Memory    MemoryConfig             `yaml:"memory"`
		RunLog    RunLogConfig             `yaml:"run_log"`
		Suggest   SuggestConfig            `yaml:"suggest"`
		Channels  map[string]ChannelConfig `yaml:"channels"`
	}

	ServerConfig struct {
		Bind           string `yaml:"bind"`
		RequestTimeout int    `yaml:"request_timeout"` // seconds
		MetricsBind    string `yaml:"metrics_bind"`
	}

	LoggingConfig struct {
		Level      string `yaml:"level"`  // debug, info, warn, error
		Format     string `yaml:"format"` // json, text
		Output     string `yaml:"output"` // stdout, file, both
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // MB
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
	}

	SchedulerConfig struct {
		UserTimezone   string `yaml:"user_timezone"`    // IANA zone, default Europe/Berlin
		MinLeadMinutes int    `yaml:"min_lead_minutes"` // minimum schedulable distance from now
		NearbyMinutes  int    `yaml:"nearby_minutes"`   // merge window for close reminders
		DebounceSec    int    `yaml:"debounce_sec"`     // deferred-trigger debounce window
		JanitorCron    string `yaml:"janitor_cron"`     // 5-field cron, default every 12h
		LedgerSize     int    `yaml:"ledger_size"`      // executed-reminder retention
	}

	MemoryConfig struct {
		Store          string `yaml:"store"` // path to memories.json, defaults under data dir
		PruneAfterDays int    `yaml:"prune_after_days"`
	}

	RunLogConfig struct {
		Dir           string `yaml:"dir"` // sqlite directory, ":memory:" for tests
		RetentionDays int    `yaml:"retention_days"`
	}

	SuggestConfig struct {
		Enabled bool           `yaml:"enabled"`
		Model   string         `yaml:"model"`
		Config  map[string]any `yaml:"config"` // base_url, api_key, timeout
	}

	ChannelConfig struct {
		ID      string         `yaml:"-"`
		Type    string         `yaml:"type"` // telegram, console
		Enabled bool           `yaml:"enabled"`
		Config  map[string]any `yaml:"config"`
	}
)
