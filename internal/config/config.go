// Package config loads command settings from flags, environment variables
// (NIGHTSKY_*) and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/nightsky/internal/sky"
	"github.com/cwbudde/nightsky/internal/surface"
)

// Keys shared by flags, env vars and the config file.
const (
	KeyWidth    = "width"
	KeyHeight   = "height"
	KeyPreset   = "preset"
	KeySeed     = "seed"
	KeyBackend  = "backend"
	KeyOutput   = "output"
	KeyDataDir  = "data-dir"
	KeyAddr     = "addr"
	KeyLogLevel = "log-level"
)

// Settings is the resolved configuration of one command invocation.
type Settings struct {
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
	Preset   string `mapstructure:"preset"`
	Seed     int64  `mapstructure:"seed"`
	Backend  string `mapstructure:"backend"`
	Output   string `mapstructure:"output"`
	DataDir  string `mapstructure:"data-dir"`
	Addr     string `mapstructure:"addr"`
	LogLevel string `mapstructure:"log-level"`
}

// New returns a viper instance with defaults and env binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("NIGHTSKY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyWidth, 0)
	v.SetDefault(KeyHeight, 0)
	v.SetDefault(KeyPreset, sky.DefaultPreset)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyBackend, string(surface.BackendGoGPU))
	v.SetDefault(KeyOutput, "sky.png")
	v.SetDefault(KeyDataDir, "./data")
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyLogLevel, "info")
	return v
}

// BindFlags makes every flag in fs override the matching key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || err != nil {
			return
		}
		err = v.BindPFlag(f.Name, f)
	})
	return err
}

// Load reads the config file and decodes the settings. An explicit file
// must exist; otherwise nightsky.{yaml,toml,json} is looked up in the
// working directory and $HOME/.config/nightsky and may be absent.
func Load(v *viper.Viper, file string) (Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("nightsky")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/nightsky")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, s.Validate()
}

// Validate checks the fields that do not depend on the command.
func (s Settings) Validate() error {
	if s.Width < 0 {
		return &ValidationError{Key: KeyWidth, Reason: "cannot be negative"}
	}
	if s.Height < 0 {
		return &ValidationError{Key: KeyHeight, Reason: "cannot be negative"}
	}
	if _, err := sky.Preset(s.Preset); err != nil {
		return &ValidationError{Key: KeyPreset, Reason: fmt.Sprintf("unknown preset %q (known: %s)", s.Preset, strings.Join(sky.Presets(), ", "))}
	}
	known := false
	for _, b := range surface.SupportedBackends() {
		if surface.NormalizeBackend(s.Backend) == b {
			known = true
		}
	}
	if !known {
		return &ValidationError{Key: KeyBackend, Reason: fmt.Sprintf("unknown backend %q", s.Backend)}
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return &ValidationError{Key: KeyLogLevel, Reason: err.Error()}
	}
	return nil
}

// Sky builds the render configuration.
func (s Settings) Sky() (sky.Config, error) {
	return sky.Resolve(s.Preset, s.Width, s.Height, s.Seed, s.Backend)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ValidationError reports an invalid setting.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid setting " + e.Key + ": " + e.Reason
}
