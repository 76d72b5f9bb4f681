// Package config loads minimizer settings from an optional YAML file,
// QELM_* environment variables and command line flags.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	MethodAuto      = "auto"
	MethodExact     = "exact"
	MethodHeuristic = "heuristic"
)

type Config struct {
	// Method is auto, exact or heuristic.
	Method string `mapstructure:"method" json:"method"`
	// ExactThreshold is the largest input count auto sends to the exact
	// minimizer.
	ExactThreshold int `mapstructure:"exact-threshold" json:"exactThreshold"`
	// Passes is the number of randomized heuristic passes.
	Passes int `mapstructure:"passes" json:"passes"`
	// Seed seeds the heuristic. Zero draws a seed from the clock.
	Seed  int64  `mapstructure:"seed" json:"seed"`
	Cover string `mapstructure:"cover" json:"cover"`
	// PetrickLimit bounds Petrick's product before auto cover switches to
	// the SAT solver.
	PetrickLimit int  `mapstructure:"petrick-limit" json:"petrickLimit"`
	Verify       bool `mapstructure:"verify" json:"verify"`
	// Workers bounds how many outputs are minimized at once.
	Workers  int    `mapstructure:"workers" json:"workers"`
	// LogLevel is debug, info or error. Empty defers to LOG_LEVEL.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`
	Addr     string `mapstructure:"addr" json:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Method:         MethodAuto,
		ExactThreshold: 10,
		Passes:         5,
		Cover:          "auto",
		PetrickLimit:   4096,
		Workers:        runtime.GOMAXPROCS(0),
		Addr:           ":8080",
	}
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	switch c.Method {
	case MethodAuto, MethodExact, MethodHeuristic:
	default:
		return fmt.Errorf("unknown method %q, want auto, exact or heuristic", c.Method)
	}
	switch c.Cover {
	case "auto", "petrick", "sat", "pb":
	default:
		return fmt.Errorf("unknown cover strategy %q, want auto, petrick, sat or pb", c.Cover)
	}
	if c.ExactThreshold < 0 {
		return fmt.Errorf("exact-threshold must not be negative")
	}
	if c.Passes < 1 {
		return fmt.Errorf("passes must be at least 1")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}

// Loader reads a Config and can keep it current as the file changes.
type Loader struct {
	v    *viper.Viper
	mu   sync.RWMutex
	cfg  Config
	file string
}

// NewLoader prepares a loader for file, which may be empty. Flags in fs
// whose names match config keys override file and environment values.
func NewLoader(file string, fs *pflag.FlagSet) (*Loader, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("method", def.Method)
	v.SetDefault("exact-threshold", def.ExactThreshold)
	v.SetDefault("passes", def.Passes)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("cover", def.Cover)
	v.SetDefault("petrick-limit", def.PetrickLimit)
	v.SetDefault("verify", def.Verify)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("log-level", def.LogLevel)
	v.SetDefault("addr", def.Addr)

	v.SetEnvPrefix("qelm")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load configuration file %s: %w", file, err)
		}
	}
	l := &Loader{v: v, file: file}
	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return l, nil
}

// Load is NewLoader followed by Config.
func Load(file string, fs *pflag.FlagSet) (Config, error) {
	l, err := NewLoader(file, fs)
	if err != nil {
		return Config{}, err
	}
	return l.Config(), nil
}

func (l *Loader) unmarshal() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Config returns the current settings.
func (l *Loader) Config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Watch reloads the file whenever it changes. A reload that fails to
// parse or validate keeps the previous settings and is passed to
// onError; a successful one is passed to onChange. Watch does nothing
// when the loader has no file.
func (l *Loader) Watch(onChange func(Config), onError func(error)) {
	if l.file == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.unmarshal()
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reloading %s: %w", e.Name, err))
			}
			return
		}
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()
		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}
