package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	trackAdmin "github.com/MrEthical07/trackAdmin"
	"github.com/MrEthical07/trackAdmin/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the state shared by every subcommand.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	apiURL     string
	storeDir   string
	logLevel   string

	console *trackAdmin.Console
	logger  *zap.Logger
}

// loadConfig applies the file, environment and flags in that order. A CLI
// process does not outlive one command, so the default memory store is
// swapped for an on-disk one to keep the session between invocations.
func (a *app) loadConfig() (trackAdmin.Config, error) {
	cfg, err := trackAdmin.LoadConfig(a.configPath)
	if err != nil {
		return trackAdmin.Config{}, err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.storeDir != "" {
		cfg.Storage.Backend = trackAdmin.StorageBadger
		cfg.Storage.Path = a.storeDir
	}
	if cfg.Storage.Backend == trackAdmin.StorageMemory {
		dir, err := defaultStoreDir()
		if err != nil {
			return trackAdmin.Config{}, err
		}
		cfg.Storage.Backend = trackAdmin.StorageBadger
		cfg.Storage.Path = dir
	}
	if err := cfg.Validate(); err != nil {
		return trackAdmin.Config{}, err
	}
	return cfg, nil
}

func defaultStoreDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "trackadmin", "session"), nil
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "help", "completion", "trackadmin":
		return nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	// One-shot commands only keep the monitor alive inside the shell.
	if cmd.Name() != "shell" {
		cfg.Monitor.Enabled = false
	}

	console, err := trackAdmin.New().
		WithConfig(cfg).
		WithLogger(log).
		WithNoticeSink(trackAdmin.FuncNoticeSink(a.printNotice)).
		Build()
	if err != nil {
		_ = log.Sync()
		return err
	}
	a.console = console
	a.logger = log
	return nil
}

func (a *app) close() error {
	if a.console == nil {
		return nil
	}
	err := a.console.Close()
	_ = a.logger.Sync()
	a.console = nil
	return err
}

func (a *app) printNotice(n trackAdmin.Notice) {
	fmt.Fprintf(a.errOut, "[%s] %s\n", n.Level, n.Message)
}
