// Package config loads host settings with viper.
//
// Sources, highest precedence first: bound flags, TETHER_* environment
// variables (dots become underscores, e.g. TETHER_HISTORY_BACKEND), the
// config file (tether.yaml), defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultCommandsFile   = "commands.yaml"
	DefaultListen         = "127.0.0.1:8080"
	DefaultMCPListen      = "127.0.0.1:8081"
	DefaultMaxConcurrent  = 4
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultHistoryBackend = BackendMemory
	DefaultHistoryLimit   = 200
	DefaultHistoryDir     = ".tether/history"
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPrefix    = "tether:"
	EnvPrefix             = "TETHER"
	ConfigName            = "tether"
)

// History backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendLoam   = "loam"
	BackendNone   = "none"
)

// Settings is the host configuration.
type Settings struct {
	BaseDir       string `mapstructure:"base_dir"`
	CommandsFile  string `mapstructure:"commands_file"`
	Listen        string `mapstructure:"listen"`
	FrontendDir   string `mapstructure:"frontend_dir"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
	Metrics       bool   `mapstructure:"metrics"`

	Log     LogSettings     `mapstructure:"log"`
	History HistorySettings `mapstructure:"history"`
	Redis   RedisSettings   `mapstructure:"redis"`
	MCP     MCPSettings     `mapstructure:"mcp"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type HistorySettings struct {
	Backend string `mapstructure:"backend"`
	Limit   int    `mapstructure:"limit"`
	Dir     string `mapstructure:"dir"`
}

type RedisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	// Lock serializes exclusive commands through Redis instead of in-process.
	Lock bool `mapstructure:"lock"`
}

type MCPSettings struct {
	Listen  string `mapstructure:"listen"`
	BaseURL string `mapstructure:"base_url"`
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("base_dir", "")
	v.SetDefault("commands_file", DefaultCommandsFile)
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("frontend_dir", "")
	v.SetDefault("max_concurrent", DefaultMaxConcurrent)
	v.SetDefault("metrics", true)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.file", "")
	v.SetDefault("history.backend", DefaultHistoryBackend)
	v.SetDefault("history.limit", DefaultHistoryLimit)
	v.SetDefault("history.dir", DefaultHistoryDir)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", DefaultRedisPrefix)
	v.SetDefault("redis.lock", false)
	v.SetDefault("mcp.listen", DefaultMCPListen)
	v.SetDefault("mcp.base_url", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file and decodes the settings.
//
// When path is empty, tether.yaml is searched in the working directory and in
// the user config directory; not finding one is not an error. When path is
// given, the file must exist.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "tether"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	s.File = v.ConfigFileUsed()

	if err := s.resolveBaseDir(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// resolveBaseDir anchors relative paths at the config file's directory,
// or at the working directory when no file was read.
func (s *Settings) resolveBaseDir() error {
	anchor := ""
	if s.File != "" {
		anchor = filepath.Dir(s.File)
	}

	base := s.BaseDir
	switch {
	case base == "" && anchor != "":
		base = anchor
	case base != "" && !filepath.IsAbs(base) && anchor != "":
		base = filepath.Join(anchor, base)
	case base == "":
		base = "."
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("invalid base_dir: %w", err)
	}
	s.BaseDir = abs

	if s.History.Dir != "" && !filepath.IsAbs(s.History.Dir) {
		s.History.Dir = filepath.Join(s.BaseDir, s.History.Dir)
	}
	if s.FrontendDir != "" && !filepath.IsAbs(s.FrontendDir) {
		s.FrontendDir = filepath.Join(s.BaseDir, s.FrontendDir)
	}
	return nil
}

// Validate checks the settings for values the host cannot run with.
func (s *Settings) Validate() error {
	switch s.History.Backend {
	case BackendMemory, BackendRedis, BackendLoam, BackendNone:
	default:
		return fmt.Errorf("unknown history backend %q", s.History.Backend)
	}
	if s.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must not be negative: %d", s.MaxConcurrent)
	}
	if s.History.Limit < 0 {
		return fmt.Errorf("history.limit must not be negative: %d", s.History.Limit)
	}
	if s.History.Backend == BackendLoam && s.History.Dir == "" {
		return fmt.Errorf("history.dir is required for the loam backend")
	}
	return nil
}
