// Package config provides configuration types, defaults, loading, and
// persistence for senhas.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ceald/senhas/internal/gate"
	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/registration"
	"github.com/ceald/senhas/internal/tracing"
)

// EnvPrefix prefixes every environment override, e.g. SENHAS_API_BASE_URL.
const EnvPrefix = "SENHAS"

// LocalConfigPath is checked before the user config directory.
const LocalConfigPath = ".senhas/config.yaml"

// Config holds all configuration options for senhas.
type Config struct {
	API          APIConfig          `mapstructure:"api" yaml:"api"`
	Registration RegistrationConfig `mapstructure:"registration" yaml:"registration"`
	Window       WindowConfig       `mapstructure:"window" yaml:"window"`
	Admin        AdminConfig        `mapstructure:"admin" yaml:"admin"`
	UI           UIConfig           `mapstructure:"ui" yaml:"ui"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
	Tracing      tracing.Config     `mapstructure:"tracing" yaml:"tracing"`
}

// APIConfig locates the queue API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// RegistrationConfig selects the form rules. These are the settings that
// differed between deployments of the kiosk.
type RegistrationConfig struct {
	RequirePhone         bool          `mapstructure:"require_phone" yaml:"require_phone"`
	RequireLastName      bool          `mapstructure:"require_last_name" yaml:"require_last_name"`
	DetectDuplicatePhone bool          `mapstructure:"detect_duplicate_phone" yaml:"detect_duplicate_phone"`
	CapacityLimit        int           `mapstructure:"capacity_limit" yaml:"capacity_limit"` // 0 disables the cap
	SlowNetworkAfter     time.Duration `mapstructure:"slow_network_after" yaml:"slow_network_after"`
}

// WindowConfig selects when registrations are accepted.
type WindowConfig struct {
	Mode            string `mapstructure:"mode" yaml:"mode"` // "remote", "hours" or "always"
	StartHour       int    `mapstructure:"start_hour" yaml:"start_hour"`
	EndHour         int    `mapstructure:"end_hour" yaml:"end_hour"`
	RecheckSchedule string `mapstructure:"recheck_schedule" yaml:"recheck_schedule"` // cron, remote mode only
}

// AdminConfig configures the staff screen and the export command.
type AdminConfig struct {
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`
	// Password is only read from the environment (SENHAS_ADMIN_PASSWORD) by
	// the export command; it is never written to the config file.
	Password string `mapstructure:"password" yaml:"-"`
}

// UIConfig holds presentation options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style" yaml:"markdown_style"` // "dark" (default), "light" or "notty"
	Accent        string `mapstructure:"accent" yaml:"accent"`                 // hex color for buttons and focus
}

// LogConfig configures the debug log.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Defaults returns the configuration of the deployed CEALD kiosk.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "https://ceald-api.onrender.com",
			Timeout: 15 * time.Second,
		},
		Registration: RegistrationConfig{
			RequirePhone:         true,
			RequireLastName:      false,
			DetectDuplicatePhone: true,
			CapacityLimit:        60,
			SlowNetworkAfter:     registration.DefaultSlowNetworkAfter,
		},
		Window: WindowConfig{
			Mode:            gate.ModeRemote,
			StartHour:       12,
			EndHour:         22,
			RecheckSchedule: gate.DefaultRecheckSchedule,
		},
		Admin: AdminConfig{
			ExportDir: ".",
		},
		UI: UIConfig{
			MarkdownStyle: "dark",
		},
		Log: LogConfig{
			Level: "info",
			File:  "debug.log",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// SetDefaults registers every default with v and enables SENHAS_*
// environment overrides.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("registration.require_phone", d.Registration.RequirePhone)
	v.SetDefault("registration.require_last_name", d.Registration.RequireLastName)
	v.SetDefault("registration.detect_duplicate_phone", d.Registration.DetectDuplicatePhone)
	v.SetDefault("registration.capacity_limit", d.Registration.CapacityLimit)
	v.SetDefault("registration.slow_network_after", d.Registration.SlowNetworkAfter)
	v.SetDefault("window.mode", d.Window.Mode)
	v.SetDefault("window.start_hour", d.Window.StartHour)
	v.SetDefault("window.end_hour", d.Window.EndHour)
	v.SetDefault("window.recheck_schedule", d.Window.RecheckSchedule)
	v.SetDefault("admin.export_dir", d.Admin.ExportDir)
	v.SetDefault("admin.password", "")
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("ui.accent", d.UI.Accent)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the config file at path on top of the defaults and validates it.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	log.Debug(log.CatConfig, "config loaded", "path", path)
	return cfg, nil
}

// Validate checks every section.
func Validate(cfg Config) error {
	if err := ValidateAPI(cfg.API); err != nil {
		return err
	}
	if err := ValidateRegistration(cfg.Registration); err != nil {
		return err
	}
	if err := ValidateWindow(cfg.Window); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateAPI requires an absolute http(s) base URL.
func ValidateAPI(api APIConfig) error {
	u, err := url.Parse(api.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", api.BaseURL)
	}
	if api.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", api.Timeout)
	}
	return nil
}

// ValidateRegistration rejects negative limits.
func ValidateRegistration(reg RegistrationConfig) error {
	if reg.CapacityLimit < 0 {
		return fmt.Errorf("registration.capacity_limit must be 0 (no limit) or positive, got %d", reg.CapacityLimit)
	}
	if reg.SlowNetworkAfter < 0 {
		return fmt.Errorf("registration.slow_network_after must not be negative, got %s", reg.SlowNetworkAfter)
	}
	return nil
}

// ValidateWindow checks the mode and the fields that mode uses.
func ValidateWindow(w WindowConfig) error {
	switch w.Mode {
	case gate.ModeHours:
		if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
			return fmt.Errorf("window.start_hour and window.end_hour must satisfy 0 <= start < end <= 24, got %d-%d", w.StartHour, w.EndHour)
		}
	case gate.ModeRemote:
		if w.RecheckSchedule != "" {
			if _, err := gate.ParseSchedule(w.RecheckSchedule); err != nil {
				return fmt.Errorf("window.recheck_schedule: %w", err)
			}
		}
	case gate.ModeAlways:
	default:
		return fmt.Errorf("window.mode must be %q, %q or %q, got %q", gate.ModeRemote, gate.ModeHours, gate.ModeAlways, w.Mode)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	if !tracing.KnownExporter(t.Exporter) {
		return fmt.Errorf("tracing.exporter must be %q, %q, %q or %q, got %q",
			tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP, t.Exporter)
	}
	if t.Enabled && t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// Policy converts the registration section.
func (c Config) Policy() registration.Policy {
	return registration.Policy{
		RequirePhone:         c.Registration.RequirePhone,
		RequireLastName:      c.Registration.RequireLastName,
		DetectDuplicatePhone: c.Registration.DetectDuplicatePhone,
		CapacityLimit:        c.Registration.CapacityLimit,
		SlowNetworkAfter:     c.Registration.SlowNetworkAfter,
	}
}

// WindowSpec converts the window section.
func (c Config) WindowSpec() gate.Spec {
	return gate.Spec{
		Mode:            c.Window.Mode,
		StartHour:       c.Window.StartHour,
		EndHour:         c.Window.EndHour,
		RecheckSchedule: c.Window.RecheckSchedule,
	}
}

// TracingConfig returns the tracing section with the trace file placed next
// to the config file when no path is set.
func (c Config) TracingConfig(configPath string) tracing.Config {
	t := c.Tracing
	if t.FilePath == "" {
		dir := filepath.Dir(configPath)
		if configPath == "" {
			dir = filepath.Dir(LocalConfigPath)
		}
		t.FilePath = filepath.Join(dir, "traces.jsonl")
	}
	return t
}

// UserConfigPath is ~/.config/senhas/config.yaml.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "senhas", "config.yaml")
}

// DefaultConfigTemplate returns the default config as commented YAML.
func DefaultConfigTemplate() string {
	return `# senhas configuration
# Every key can be overridden with an environment variable:
# SENHAS_<SECTION>_<KEY>, e.g. SENHAS_API_BASE_URL. A .env file in the
# working directory is loaded first.

api:
  # Queue API that hands out attendance numbers.
  base_url: https://ceald-api.onrender.com
  timeout: 15s

registration:
  # Collect a mobile number in the (DD) 9NNNN-NNNN format.
  require_phone: true
  # Require first and last name.
  require_last_name: false
  # Explain when a phone number already holds a ticket.
  detect_duplicate_phone: true
  # Guests numbered above this are told the day is full. 0 disables.
  capacity_limit: 60
  # Show the slow connection hint after this long.
  slow_network_after: 3s

window:
  # remote: ask the API (re-checked on recheck_schedule)
  # hours:  open from start_hour to end_hour on this machine's clock
  # always: never closed
  mode: remote
  start_hour: 12
  end_hour: 22
  recheck_schedule: "0 20 * * *"

admin:
  # Where exported guest lists are written.
  export_dir: .

ui:
  markdown_style: dark
  # accent: "#3B82F6"

log:
  level: info
  file: debug.log

tracing:
  enabled: false
  exporter: file
  # file_path: defaults to traces.jsonl next to this file
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at configPath with default
// settings and comments, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}
