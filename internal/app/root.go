//go:build linux

// Package app wires the harness together behind the socktest command line.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/pranshuparmar/socktest/internal/config"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

type flags struct {
	verbose    bool
	configPath string
	model      string
	threshold  time.Duration
	plain      bool
	noColor    bool
	logLevel   string
	logFile    string
}

var opts flags

var rootCmd = &cobra.Command{
	Use:   "socktest [-v]",
	Short: "Interactive harness for socket calls under blocking, nonblocking, select and signal I/O",
	Long: `socktest opens sockets and runs individual socket calls on them under a chosen
I/O model, reporting whether each call blocked when the model predicts it should.

Type "help" at the prompt for the command list.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd.Flags(), opts)
		if err != nil {
			return err
		}
		plain := opts.plain || !term.IsTerminal(int(os.Stdin.Fd()))
		return run(cmd.Context(), cfg, session{
			plain:  plain,
			stdin:  os.Stdin,
			stdout: os.Stdout,
			stderr: os.Stderr,
		})
	},
}

func init() {
	bindFlags(rootCmd.Flags(), &opts)
}

func bindFlags(f *pflag.FlagSet, opts *flags) {
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "report call results, timing verdicts and received data")
	f.StringVar(&opts.configPath, "config", "", "TOML settings file")
	f.StringVar(&opts.model, "model", "", "initial I/O model (blocking, nonblocking, select, signal)")
	f.DurationVar(&opts.threshold, "threshold", 0, "elapsed time above which a call counts as blocked")
	f.BoolVar(&opts.plain, "plain", false, "line-oriented prompt instead of the full-screen interface")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.StringVar(&opts.logLevel, "log-level", "", "diagnostic log level (panic, fatal, error, warn, info, debug, trace)")
	f.StringVar(&opts.logFile, "log-file", "", "write diagnostic logs to this file")
}

// resolveConfig layers explicitly set flags over the config file, and the
// file over the defaults.
func resolveConfig(fs *pflag.FlagSet, f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fs.Changed("model") {
		cfg.Model = f.model
	}
	if fs.Changed("threshold") {
		cfg.BlockThreshold = config.Duration{Duration: f.threshold}
	}
	if fs.Changed("no-color") {
		cfg.Color = !f.noColor
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	return cfg, cfg.Validate()
}

func SetVersionBuildCommitString(v, c, d string) {
	version = v
	commit = c
	buildDate = d
	rootCmd.Version = versionString()
}

func versionString() string {
	v := version
	if v == "" {
		v = "dev"
	}
	if commit != "" {
		v += " (" + commit
		if buildDate != "" {
			v += ", " + buildDate
		}
		v += ")"
	}
	return v
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
