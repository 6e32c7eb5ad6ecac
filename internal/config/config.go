// Package config loads the harness settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/pranshuparmar/socktest/internal/iomodel"
	"github.com/pranshuparmar/socktest/internal/verify"
	"github.com/pranshuparmar/socktest/pkg/model"
)

// Duration is a time.Duration written as a Go duration string ("1s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds every tunable of a harness session.
type Config struct {
	Verbose        bool     `toml:"verbose"`
	Model          string   `toml:"model"`
	BlockThreshold Duration `toml:"block_threshold"`
	RetryInterval  Duration `toml:"retry_interval"`
	WaitStep       Duration `toml:"wait_step"`
	Color          bool     `toml:"color"`
	LogLevel       string   `toml:"log_level"`
	LogFile        string   `toml:"log_file"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Model:          model.Blocking.String(),
		BlockThreshold: Duration{verify.DefaultThreshold},
		RetryInterval:  Duration{iomodel.DefaultRetryInterval},
		WaitStep:       Duration{iomodel.DefaultWaitStep},
		Color:          true,
		LogLevel:       logrus.WarnLevel.String(),
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the TOML decoder cannot.
func (c Config) Validate() error {
	var errs []error
	if _, err := model.ParseKind(c.Model); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for name, d := range map[string]Duration{
		"block_threshold": c.BlockThreshold,
		"retry_interval":  c.RetryInterval,
		"wait_step":       c.WaitStep,
	} {
		if d.Duration <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d.Duration))
		}
	}
	return errors.Join(errs...)
}

// Kind returns the configured initial model.
func (c Config) Kind() model.Kind {
	k, _ := model.ParseKind(c.Model)
	return k
}
