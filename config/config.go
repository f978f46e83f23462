package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"leaderflow/models"
)

type Config struct {
	Leaderflow LeaderflowConfig `yaml:"leaderflow"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Reader     ReaderConfig     `yaml:"reader"`
	Snapshots  SnapshotsConfig  `yaml:"snapshots"`
	Storage    StorageConfig    `yaml:"storage"`
	Sources    []SourceConfig   `yaml:"sources"`
}

type LeaderflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LoggingConfig drives logger.Configure. Report enables the periodic
// runtime report with system and per-source counters.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
	Report bool   `yaml:"report"`
}

type MetricsConfig struct {
	CloudWatch bool   `yaml:"cloudwatch"`
	Region     string `yaml:"region"`
	Namespace  string `yaml:"namespace"`
	Dashboard  string `yaml:"dashboard"`
}

type ReaderConfig struct {
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type SnapshotsConfig struct {
	Dir      string `yaml:"dir"`
	WriteRaw bool   `yaml:"write_raw"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// AuthConfig describes where a source expects its API key. Type is one of
// "none", "header" or "query". Scheme applies to header placement: "raw",
// "bearer" or "token". The key itself comes from KeyEnv at load time so
// credentials stay out of the yaml.
type AuthConfig struct {
	Type   string `yaml:"type"`
	Header string `yaml:"header"`
	Scheme string `yaml:"scheme"`
	Param  string `yaml:"param"`
	Key    string `yaml:"key"`
	KeyEnv string `yaml:"key_env"`
}

// DateRangeConfig selects the wagering window sent to a source. Mode "month"
// covers the current UTC calendar month; "fixed" uses Start/End (YYYY-MM-DD);
// "" sends no window. Style "query" emits multi-convention query parameters,
// "body" a JSON POST body with epoch-millisecond bounds.
type DateRangeConfig struct {
	Mode  string `yaml:"mode"`
	Style string `yaml:"style"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// SourceConfig is the full per-source adapter configuration. Adapters are
// structurally identical; only this data differs between affiliate APIs.
type SourceConfig struct {
	Name          string              `yaml:"name"`
	BaseURLs      []string            `yaml:"base_urls"`
	Paths         []string            `yaml:"paths"`
	Method        string              `yaml:"method"`
	Params        map[string]string   `yaml:"params"`
	Headers       map[string]string   `yaml:"headers"`
	Auth          AuthConfig          `yaml:"auth"`
	DateRange     DateRangeConfig     `yaml:"date_range"`
	Units         string              `yaml:"units"`
	Size          int                 `yaml:"size"`
	RankByWagered bool                `yaml:"rank_by_wagered"`
	PayloadPrizes bool                `yaml:"payload_prizes"`
	Prizes        []models.PrizeEntry `yaml:"prizes"`
}

// Ready reports whether the source has everything it needs this run. A
// source missing its API key or a path parameter is skipped with a warning
// rather than failing the batch.
func (s SourceConfig) Ready() (bool, string) {
	if s.Auth.Type == "header" || s.Auth.Type == "query" {
		if s.Auth.Key == "" {
			return false, fmt.Sprintf("missing API key (set %s)", s.Auth.KeyEnv)
		}
	}
	for name, value := range s.Params {
		if value == "" {
			return false, fmt.Sprintf("missing parameter %q", name)
		}
	}
	return true, ""
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Reader: ReaderConfig{
			Timeout: 15 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 4,
				BurstSize:         2,
			},
		},
		Snapshots: SnapshotsConfig{Dir: "public/data"},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Resolve secrets and per-source parameters from the environment. The
	// yaml never carries credentials directly.
	for i := range config.Sources {
		src := &config.Sources[i]
		if src.Auth.KeyEnv != "" && src.Auth.Key == "" {
			src.Auth.Key = strings.TrimSpace(os.Getenv(src.Auth.KeyEnv))
		}
		for name, value := range src.Params {
			src.Params[name] = strings.TrimSpace(os.ExpandEnv(value))
		}
	}

	// Override S3 settings from environment variables if available.
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Leaderflow.Name == "" {
		return fmt.Errorf("leaderflow.name is required")
	}
	if cfg.Leaderflow.Version == "" {
		return fmt.Errorf("leaderflow.version is required")
	}
	if cfg.Reader.Timeout <= 0 {
		return fmt.Errorf("reader.timeout must be greater than 0")
	}
	if cfg.Snapshots.Dir == "" {
		return fmt.Errorf("snapshots.dir is required")
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	seen := make(map[string]bool, len(cfg.Sources))
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		if src.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true

		if len(src.BaseURLs) == 0 {
			return fmt.Errorf("source %q: base_urls is required", src.Name)
		}
		if len(src.Paths) == 0 {
			src.Paths = []string{""}
		}

		switch strings.ToUpper(src.Method) {
		case "":
			src.Method = "GET"
		case "GET", "POST":
			src.Method = strings.ToUpper(src.Method)
		default:
			return fmt.Errorf("source %q: method must be GET or POST", src.Name)
		}

		switch src.Units {
		case "":
			src.Units = "base"
		case "base", "cents":
		default:
			return fmt.Errorf("source %q: units must be base or cents", src.Name)
		}

		switch src.Auth.Type {
		case "", "none":
			src.Auth.Type = "none"
		case "header":
			if src.Auth.Header == "" {
				src.Auth.Header = "x-api-key"
			}
			switch src.Auth.Scheme {
			case "":
				src.Auth.Scheme = "raw"
			case "raw", "bearer", "token":
			default:
				return fmt.Errorf("source %q: auth.scheme must be raw, bearer or token", src.Name)
			}
		case "query":
			if src.Auth.Param == "" {
				src.Auth.Param = "key"
			}
		default:
			return fmt.Errorf("source %q: auth.type must be none, header or query", src.Name)
		}

		switch src.DateRange.Mode {
		case "", "month":
		case "fixed":
			if src.DateRange.Start == "" || src.DateRange.End == "" {
				return fmt.Errorf("source %q: fixed date_range requires start and end", src.Name)
			}
		default:
			return fmt.Errorf("source %q: date_range.mode must be month or fixed", src.Name)
		}
		switch src.DateRange.Style {
		case "", "query", "body":
		default:
			return fmt.Errorf("source %q: date_range.style must be query or body", src.Name)
		}
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
	}

	return nil
}
