// Package config loads phishguard settings from defaults, an optional YAML
// file, a .env file and PHISHGUARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/logging"
)

// EnvPrefix is prepended to every environment override:
// server.addr is read from PHISHGUARD_SERVER_ADDR.
const EnvPrefix = "PHISHGUARD"

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Assessor AssessorConfig `mapstructure:"assessor"`
	Rules    RulesConfig    `mapstructure:"rules"`
}

type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AssessorConfig struct {
	TyposquatThreshold  float64 `mapstructure:"typosquat_threshold"`
	SuspiciousThreshold int     `mapstructure:"suspicious_threshold"`
}

// RulesConfig entries are appended to the built-in rule tables.
type RulesConfig struct {
	Shorteners         []string `mapstructure:"shorteners"`
	SuspiciousPatterns []string `mapstructure:"suspicious_patterns"`
	ReferenceDomains   []string `mapstructure:"reference_domains"`
	SuspiciousTLDs     []string `mapstructure:"suspicious_tlds"`
	RedirectParams     []string `mapstructure:"redirect_params"`
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	def := assessor.DefaultConfig()
	return &Config{
		Server: ServerConfig{Addr: ":8080", ReadTimeout: 15 * time.Second},
		Log:    LogConfig{Level: "info"},
		Assessor: AssessorConfig{
			TyposquatThreshold:  def.TyposquatThreshold,
			SuspiciousThreshold: def.SuspiciousThreshold,
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)

	v.SetDefault("log.level", def.Log.Level)

	v.SetDefault("assessor.typosquat_threshold", def.Assessor.TyposquatThreshold)
	v.SetDefault("assessor.suspicious_threshold", def.Assessor.SuspiciousThreshold)

	// registered so AutomaticEnv can override them
	v.SetDefault("rules.shorteners", []string{})
	v.SetDefault("rules.suspicious_patterns", []string{})
	v.SetDefault("rules.reference_domains", []string{})
	v.SetDefault("rules.suspicious_tlds", []string{})
	v.SetDefault("rules.redirect_params", []string{})
}

// Load reads configuration. With an explicit path the file must exist; with
// an empty path "phishguard.yaml" is looked up in the working directory and
// $HOME/.config/phishguard, and a missing file is not an error. Environment
// variables override both.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("phishguard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/phishguard")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		if used := v.ConfigFileUsed(); used != "" {
			return nil, fmt.Errorf("config: %s: %w", used, err)
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are named) into the process environment. Variables that are already set
// win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must not be empty")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if t := c.Assessor.TyposquatThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("assessor.typosquat_threshold %v out of range (0,1]", t)
	}
	if s := c.Assessor.SuspiciousThreshold; s < 0 || s > 100 {
		return fmt.Errorf("assessor.suspicious_threshold %d out of range [0,100]", s)
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	lvl, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.LevelInfo
	}
	return lvl
}

// AssessorConfig builds the assessor configuration: built-in tables extended
// with the configured rule entries, and the configured thresholds.
func (c *Config) AssessorConfig() *assessor.Config {
	ac := assessor.DefaultConfig()
	ac.Tables = ac.Tables.Extend(assessor.Tables{
		Shorteners:         c.Rules.Shorteners,
		SuspiciousPatterns: c.Rules.SuspiciousPatterns,
		ReferenceDomains:   c.Rules.ReferenceDomains,
		SuspiciousTLDs:     c.Rules.SuspiciousTLDs,
		RedirectParams:     c.Rules.RedirectParams,
	})
	ac.TyposquatThreshold = c.Assessor.TyposquatThreshold
	ac.SuspiciousThreshold = c.Assessor.SuspiciousThreshold
	return ac
}
