package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Scorecard/internal/scorecard"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
)

type Config struct {
	Server   ServerConfig        `yaml:"server"`
	Input    InputConfig         `yaml:"input"`
	Editor   EditorConfig        `yaml:"editor"`
	Signal   SignalConfig        `yaml:"signal"`
	Columns  map[string][]string `yaml:"columns"`
	Sessions SessionsConfig      `yaml:"sessions"`
	Export   ExportConfig        `yaml:"export"`
	Events   EventsConfig        `yaml:"events"`
	Logging  LoggingConfig       `yaml:"logging"`
}

type ServerConfig struct {
	Port               int `yaml:"port"`
	MetricsPort        int `yaml:"metrics_port"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type InputConfig struct {
	DefaultPath string `yaml:"default_path"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

type EditorConfig struct {
	LockWeights bool    `yaml:"lock_weights"`
	ScoreStep   float64 `yaml:"score_step"`
	ShowNotes   bool    `yaml:"show_notes"`
}

type SignalConfig struct {
	GreenPercent  float64 `yaml:"green_percent"`
	YellowPercent float64 `yaml:"yellow_percent"`
}

type SessionsConfig struct {
	MaxSessions int `yaml:"max_sessions"`
	TTLMinutes  int `yaml:"ttl_minutes"`
}

type ExportConfig struct {
	BOM    bool   `yaml:"bom"`
	OutDir string `yaml:"out_dir"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Sessions.TTLMinutes) * time.Minute
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Input.MaxUploadMB) << 20
}

func (c *Config) Thresholds() scoring.Thresholds {
	return scoring.Thresholds{Green: c.Signal.GreenPercent, Yellow: c.Signal.YellowPercent}
}

// Aliases returns the default column aliases with the configured overrides
// applied.
func (c *Config) Aliases() (scorecard.AliasTable, error) {
	return scorecard.DefaultAliases().WithOverrides(c.Columns)
}

// LogLevel maps logging.level to a slog level. Unknown values mean info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from the logging section.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if strings.EqualFold(c.Logging.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("server.metrics_port %d out of range", c.Server.MetricsPort))
	}
	if c.Server.Port == c.Server.MetricsPort {
		errs = append(errs, errors.New("server.port and server.metrics_port must differ"))
	}
	if c.Input.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("input.max_upload_mb must be positive"))
	}
	if !scoring.ValidScoreStep(c.Editor.ScoreStep) {
		errs = append(errs, fmt.Errorf("editor.score_step %v must be one of %v", c.Editor.ScoreStep, scoring.ScoreSteps))
	}
	if err := c.Thresholds().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("signal: %w", err))
	}
	if _, err := c.Aliases(); err != nil {
		errs = append(errs, fmt.Errorf("columns: %w", err))
	}
	if c.Sessions.MaxSessions < 0 || c.Sessions.TTLMinutes < 0 {
		errs = append(errs, errors.New("sessions limits must not be negative"))
	}
	return errors.Join(errs...)
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Input: InputConfig{
			DefaultPath: "data/example_scorecard.csv",
			MaxUploadMB: 10,
		},
		Editor: EditorConfig{
			LockWeights: true,
			ScoreStep:   0.5,
			ShowNotes:   true,
		},
		Signal: SignalConfig{
			GreenPercent:  85,
			YellowPercent: 70,
		},
		Sessions: SessionsConfig{
			MaxSessions: 100,
			TTLMinutes:  240,
		},
		Export: ExportConfig{
			OutDir: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables take precedence over it
	_ = godotenv.Load()

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SCORECARD_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("SCORECARD_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("SCORECARD_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("SCORECARD_DEFAULT_PATH"); v != "" {
		cfg.Input.DefaultPath = v
	}
	if v := os.Getenv("SCORECARD_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Input.MaxUploadMB = n
		}
	}
	if v := os.Getenv("SCORECARD_LOCK_WEIGHTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Editor.LockWeights = b
		}
	}
	if v := os.Getenv("SCORECARD_SCORE_STEP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Editor.ScoreStep = f
		}
	}
	if v := os.Getenv("SCORECARD_SHOW_NOTES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Editor.ShowNotes = b
		}
	}
	if v := os.Getenv("SCORECARD_GREEN_PERCENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Signal.GreenPercent = f
		}
	}
	if v := os.Getenv("SCORECARD_YELLOW_PERCENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Signal.YellowPercent = f
		}
	}
	if v := os.Getenv("SCORECARD_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.MaxSessions = n
		}
	}
	if v := os.Getenv("SCORECARD_SESSION_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.TTLMinutes = n
		}
	}
	if v := os.Getenv("SCORECARD_EXPORT_BOM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Export.BOM = b
		}
	}
	if v := os.Getenv("SCORECARD_EXPORT_DIR"); v != "" {
		cfg.Export.OutDir = v
	}
	if v := os.Getenv("SCORECARD_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("SCORECARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCORECARD_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
