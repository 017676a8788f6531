// Package config assembles quizmind configuration from defaults, a .env
// file, a YAML file and QUIZMIND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizmind/internal/analytics"
	"github.com/abhisek/quizmind/internal/difficulty"
	"github.com/abhisek/quizmind/internal/hints"
	"github.com/abhisek/quizmind/internal/knowledge"
	"github.com/abhisek/quizmind/internal/logger"
	"github.com/abhisek/quizmind/internal/performance"
	"github.com/abhisek/quizmind/internal/recommend"
)

// DefaultFile is the config file looked up in the working directory when
// neither a path nor QUIZMIND_CONFIG is given.
const DefaultFile = "quizmind.yaml"

const envPrefix = "QUIZMIND_"

// Config is the complete quizmind configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means the platform default.
	DBPath string `yaml:"db_path"`

	Log         logger.Config     `yaml:"log"`
	Performance performance.Model `yaml:"performance"`
	Difficulty  difficulty.Config `yaml:"difficulty"`
	Knowledge   knowledge.Config  `yaml:"knowledge"`
	Hints       hints.Config      `yaml:"hints"`
	Recommend   recommend.Config  `yaml:"recommend"`
	Analytics   analytics.Config  `yaml:"analytics"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Log:         logger.DefaultConfig(),
		Performance: performance.DefaultModel(),
		Difficulty:  difficulty.DefaultConfig(),
		Knowledge:   knowledge.DefaultConfig(),
		Hints:       hints.DefaultConfig(),
		Recommend:   recommend.DefaultConfig(),
		Analytics:   analytics.DefaultConfig(),
	}
}

// Load builds the configuration. Values are applied in order: defaults,
// env files (".env" when none are given; missing files are skipped), the
// YAML file at path (or QUIZMIND_CONFIG, or DefaultFile when it exists),
// then QUIZMIND_* environment variables. The result is validated.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides configuration with environment variables.
func (c *Config) applyEnv() error {
	if v := getenv("DB"); v != "" {
		c.DBPath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"DIFFICULTY_ENABLED", &c.Difficulty.Enabled},
		{"HINTS_ENABLED", &c.Hints.Enabled},
	}
	for _, b := range bools {
		if v := getenv(b.key); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, b.key, err)
			}
			*b.dst = parsed
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"ANALYTICS_BATCH_SIZE", &c.Analytics.BatchSize},
		{"RECOMMEND_LIMIT", &c.Recommend.Limit},
	}
	for _, i := range ints {
		if v := getenv(i.key); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, i.key, err)
			}
			*i.dst = parsed
		}
	}

	if v := getenv("ANALYTICS_FLUSH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sANALYTICS_FLUSH_INTERVAL: %w", envPrefix, err)
		}
		c.Analytics.FlushInterval = d
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

var validate = validator.New()

// FieldError describes one failed constraint.
type FieldError struct {
	Field string
	Tag   string
}

// ValidationError lists every failed constraint.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s must satisfy %s", f.Field, f.Tag)
	}
	return strings.Join(parts, "; ")
}

// Validate checks struct constraints and the cross-field rules they
// cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		out := &ValidationError{}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{Field: fe.Namespace(), Tag: fe.Tag()})
		}
		return out
	}
	if c.Difficulty.Floor >= c.Difficulty.Ceiling {
		return fmt.Errorf("difficulty floor %.2f must be below ceiling %.2f", c.Difficulty.Floor, c.Difficulty.Ceiling)
	}
	if c.Knowledge.WeakThreshold > c.Knowledge.StrongThreshold {
		return fmt.Errorf("knowledge weak threshold %.2f exceeds strong threshold %.2f",
			c.Knowledge.WeakThreshold, c.Knowledge.StrongThreshold)
	}
	if err := c.Performance.Validate(); err != nil {
		return fmt.Errorf("performance model: %w", err)
	}
	return nil
}
