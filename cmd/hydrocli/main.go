// Command hydrocli is a CLI client for a CWMS-style hydrologic data service.
// It uploads CSV-derived interval time series, manages blobs and clobs,
// copies office metadata between service instances, imports SHEF crit files
// and renders latest-value HTML reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tigerroll/hydrocli/pkg/hydro/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/configbinder"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const (
	exitOK    = 0
	exitError = 1
	// exitConfig marks failures before any work started: bad flags or
	// bad configuration.
	exitConfig = 2
)

type subcommand struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

func subcommands() []subcommand {
	return []subcommand{
		{"csv2ts", "transform CSV files into interval time series and store them", runCsv2ts},
		{"blob", "upload, download and list binary objects", runBlob},
		{"clob", "upload, update, download, delete and list text objects", runClob},
		{"load", "copy locations, groups and time-series identifiers between instances", runLoad},
		{"report", "render a latest-value HTML report", runReport},
		{"critimport", "import SHEF crit file sensor bindings as a time-series group", runCritimport},
		{"history", "list recent upload runs from the history store", runHistory},
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: hydrocli <command> [flags]\n\ncommands:\n")
	for _, sc := range subcommands() {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", sc.name, sc.summary)
	}
	fmt.Fprintf(os.Stderr, "\nrun 'hydrocli <command> -h' for command flags\n")
}

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	configPath    string
	envFile       string
	logLevel      string
	logFile       string
	metricsListen string
	overrides     propertyFlags
}

// propertyFlags collects repeated -set key=value pairs.
type propertyFlags map[string]string

func (p propertyFlags) String() string { return fmt.Sprint(map[string]string(p)) }

func (p propertyFlags) Set(kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", kv)
	}
	p[key] = value
	return nil
}

func registerCommonFlags(fs *flag.FlagSet) *commonFlags {
	cf := &commonFlags{overrides: propertyFlags{}}
	fs.StringVar(&cf.configPath, "config", "", "path to the YAML configuration file")
	fs.StringVar(&cf.envFile, "env-file", "", "path to a .env file loaded before the configuration")
	fs.StringVar(&cf.logLevel, "log-level", "", "log level override (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&cf.logFile, "log-file", "", "tee log output to this file")
	fs.StringVar(&cf.metricsListen, "metrics-listen", "", "expose Prometheus metrics on this address (e.g. :9091)")
	fs.Var(cf.overrides, "set", "override a configuration key, e.g. -set session.office=SWT (repeatable)")
	return cf
}

// loadConfig applies the configuration precedence for one invocation:
// defaults, YAML file, environment, then the parsed flags.
func loadConfig(cf *commonFlags) (*config.Config, error) {
	if cf.envFile == "" {
		cf.envFile = os.Getenv("ENV_FILE_PATH")
	}
	cfg, err := config.Load(cf.envFile, cf.configPath)
	if err != nil {
		return nil, err
	}
	if err := configbinder.BindProperties(cf.overrides, cfg); err != nil {
		return nil, exception.New(exception.KindConfig, "cmd", "invalid -set override", err)
	}
	if cf.logLevel != "" {
		cfg.Logging.Level = cf.logLevel
	}
	if cf.logFile != "" {
		cfg.Logging.File = cf.logFile
	}
	if cf.metricsListen != "" {
		cfg.Metrics.Listen = cf.metricsListen
	}

	logger.SetLogLevel(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		if err := logger.SetLogFile(cfg.Logging.File); err != nil {
			logger.Warnf("could not open log file %s: %v", cfg.Logging.File, err)
		}
	}
	return cfg, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		usage()
		return exitConfig
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warnf("received signal '%v', stopping", sig)
		cancel()
	}()

	name := os.Args[1]
	for _, sc := range subcommands() {
		if sc.name != name {
			continue
		}
		if err := sc.run(ctx, os.Args[2:]); err != nil {
			logger.Errorf("%s failed: %v", name, err)
			if exception.IsFatal(err) {
				return exitConfig
			}
			return exitError
		}
		return exitOK
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	return exitConfig
}
