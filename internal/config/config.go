package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Ingestion
	Reader           string   `mapstructure:"reader" yaml:"reader"`
	NullTokens       []string `mapstructure:"null_tokens" yaml:"null_tokens,omitempty"` // nil keeps the reader preset
	Delimiter        string   `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator string   `mapstructure:"decimal_separator" yaml:"decimal_separator"`

	// Output
	NullString   string   `mapstructure:"null_string" yaml:"null_string"`
	JoinSuffixes []string `mapstructure:"join_suffixes" yaml:"join_suffixes"`
	SampleRows   int      `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Expressions
	MaxExprSteps uint64 `mapstructure:"max_expr_steps" yaml:"max_expr_steps"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	SeqURL    string `mapstructure:"seq_url" yaml:"seq_url"`
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"reader", "null_tokens", "delimiter", "decimal_separator",
	"null_string", "join_suffixes", "sample_rows", "max_expr_steps",
	"log_level", "log_format", "seq_url",
}

// Dir returns ~/.tidyloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tidyloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tidyloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied on top
// by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TIDYLOOM")
	v.AutomaticEnv()

	v.SetDefault("reader", "tidy")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("null_string", "")
	v.SetDefault("join_suffixes", []string{".x", ".y"})
	v.SetDefault("sample_rows", 5)
	v.SetDefault("max_expr_steps", 100000)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("seq_url", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" && !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set assigns one key from its string form.
func (c *Global) Set(key, value string) error {
	switch key {
	case "reader":
		c.Reader = value
	case "null_tokens":
		c.NullTokens = strings.Split(value, ",")
	case "delimiter":
		c.Delimiter = value
	case "decimal_separator":
		c.DecimalSeparator = value
	case "null_string":
		c.NullString = value
	case "join_suffixes":
		parts := strings.Split(value, ",")
		if len(parts) != 2 {
			return fmt.Errorf("join_suffixes needs two comma-separated values, got %q", value)
		}
		c.JoinSuffixes = parts
	case "sample_rows":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("invalid int for sample_rows: %w", err)
		}
		c.SampleRows = n
	case "max_expr_steps":
		var n uint64
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("invalid int for max_expr_steps: %w", err)
		}
		c.MaxExprSteps = n
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "seq_url":
		c.SeqURL = value
	default:
		return fmt.Errorf("unknown key: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Suffixes returns the join suffix pair, defaulting to ".x" and ".y".
func (c *Global) Suffixes() [2]string {
	if len(c.JoinSuffixes) == 2 {
		return [2]string{c.JoinSuffixes[0], c.JoinSuffixes[1]}
	}
	return [2]string{".x", ".y"}
}
