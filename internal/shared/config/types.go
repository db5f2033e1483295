package config

import "fmt"

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=mysql sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Database
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=console json"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// Audiences maps notify-action audience names to recipient addresses.
	Audiences map[string][]string `mapstructure:"audiences"`
}

// AutomationConfig tunes rule evaluation and action dispatch.
type AutomationConfig struct {
	ActionTimeoutSeconds  int `mapstructure:"action_timeout_seconds" validate:"gt=0"`
	MaxActionRetries      int `mapstructure:"max_action_retries" validate:"gte=0"`
	WebhookTimeoutSeconds int `mapstructure:"webhook_timeout_seconds" validate:"gt=0"`
}

// SLAConfig tunes the escalation scheduler loop.
type SLAConfig struct {
	Timezone            string `mapstructure:"timezone"`
	TickIntervalSeconds int    `mapstructure:"tick_interval_seconds" validate:"gt=0"`
	DispatchWorkers     int    `mapstructure:"dispatch_workers" validate:"gt=0"`
}
