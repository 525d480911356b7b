// Package config loads application configuration from an optional TOML file
// and LINTGATE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ericfisherdev/lintgate/internal/application"
	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "LINTGATE_"

// LinterConfig is one [[linters]] table.
type LinterConfig struct {
	Name       string   `koanf:"name"`
	Command    string   `koanf:"command"`
	Args       []string `koanf:"args"`
	Extensions []string `koanf:"extensions"`
	FileNames  []string `koanf:"filenames"`
	Format     string   `koanf:"format"`
}

// Config holds the application configuration.
type Config struct {
	GitHubToken        string         `koanf:"github_token"`
	BotLogin           string         `koanf:"bot_login"`
	RepoPath           string         `koanf:"repo_path"`
	DBPath             string         `koanf:"db_path"`
	ListenAddr         string         `koanf:"listen_addr"`
	Policy             string         `koanf:"policy"`
	UnindexedFiles     string         `koanf:"unindexed_files"`
	CommentSizeLimit   int            `koanf:"comment_size_limit"`
	OmitSuccessComment bool           `koanf:"omit_success_comment"`
	LinterTimeout      time.Duration  `koanf:"linter_timeout"`
	LogLevel           string         `koanf:"log_level"`
	LogFormat          string         `koanf:"log_format"`
	Linters            []LinterConfig `koanf:"linters"`
}

// minCommentSizeLimit leaves room for the header lines of a page.
const minCommentSizeLimit = 1000

var defaults = map[string]any{
	"repo_path":            ".",
	"db_path":              "lintgate.db",
	"listen_addr":          "127.0.0.1:8080",
	"policy":               string(model.PolicyStrike),
	"unindexed_files":      string(application.UnindexedDrop),
	"comment_size_limit":   application.DefaultCommentSizeLimit,
	"omit_success_comment": false,
	"linter_timeout":       "10m",
	"log_level":            "info",
	"log_format":           "text",
}

// DefaultLinters are used when the configuration names none.
func DefaultLinters() []LinterConfig {
	return []LinterConfig{
		{
			Name:       "rubocop",
			Command:    "rubocop",
			Args:       []string{"--format", "json"},
			Extensions: []string{".rb", ".ru", ".rake"},
			FileNames:  []string{"Gemfile", "Rakefile"},
			Format:     string(model.FormatRubocopJSON),
		},
		{
			Name:       "haml-lint",
			Command:    "haml-lint",
			Args:       []string{"--reporter", "json"},
			Extensions: []string{".haml"},
			Format:     string(model.FormatRubocopJSON),
		},
	}
}

// Load reads defaults, then the TOML file at path (skipped when path is
// empty), then LINTGATE_* environment variables, and validates the result.
// Environment keys map by stripping the prefix and lowercasing, so
// LINTGATE_GITHUB_TOKEN sets github_token.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if len(cfg.Linters) == 0 {
		cfg.Linters = DefaultLinters()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values and linter definitions.
func (c *Config) Validate() error {
	var errs []error

	if !model.ReconcilePolicy(c.Policy).Valid() {
		errs = append(errs, fmt.Errorf("policy %q: expected %q or %q", c.Policy, model.PolicyStrike, model.PolicyReplace))
	}
	if !application.UnindexedPolicy(c.UnindexedFiles).Valid() {
		errs = append(errs, fmt.Errorf("unindexed_files %q: expected %q or %q", c.UnindexedFiles, application.UnindexedDrop, application.UnindexedKeep))
	}
	if c.CommentSizeLimit < minCommentSizeLimit {
		errs = append(errs, fmt.Errorf("comment_size_limit %d: must be at least %d", c.CommentSizeLimit, minCommentSizeLimit))
	}
	if c.LinterTimeout < 0 {
		errs = append(errs, fmt.Errorf("linter_timeout %s: must not be negative", c.LinterTimeout))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q: expected text or json", c.LogFormat))
	}

	seen := make(map[string]bool)
	for i, l := range c.Linters {
		switch {
		case l.Name == "":
			errs = append(errs, fmt.Errorf("linters[%d]: name is required", i))
		case seen[l.Name]:
			errs = append(errs, fmt.Errorf("linters[%d]: duplicate name %q", i, l.Name))
		}
		seen[l.Name] = true
		if l.Command == "" {
			errs = append(errs, fmt.Errorf("linters[%d] %s: command is required", i, l.Name))
		}
		if len(l.Extensions) == 0 && len(l.FileNames) == 0 {
			errs = append(errs, fmt.Errorf("linters[%d] %s: extensions or filenames are required", i, l.Name))
		}
		if l.Format != "" && !model.ReportFormat(l.Format).Valid() {
			errs = append(errs, fmt.Errorf("linters[%d] %s: unsupported format %q", i, l.Name, l.Format))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// HasGitHubCredentials returns true when a GitHub token is configured.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != ""
}

// DomainLinters converts the linter tables to domain values.
func (c *Config) DomainLinters() []model.Linter {
	linters := make([]model.Linter, 0, len(c.Linters))
	for _, l := range c.Linters {
		format := model.ReportFormat(l.Format)
		if format == "" {
			format = model.FormatRubocopJSON
		}
		linters = append(linters, model.Linter{
			Name:       l.Name,
			Command:    l.Command,
			Args:       l.Args,
			Extensions: l.Extensions,
			FileNames:  l.FileNames,
			Format:     format,
		})
	}
	return linters
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
