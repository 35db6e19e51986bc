package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkweon/rollcall"
	"github.com/spf13/cobra"
)

// ServeFlags holds flags for the serve command
type ServeFlags struct {
	ConfigPath string
	DataFile   string
	Listen     string
}

func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	serveFlags := &ServeFlags{}
	cmd := &cobra.Command{
		Use:   "serve [config.json]",
		Short: "Start the rollcall daemon",
		Long: `Start the rollcall daemon serving the HTTP API. Configuration is
loaded from a JSON config file; a missing file runs with defaults.

Examples:
  rollcall serve                        # defaults (data/process.json, 127.0.0.1:8080)
  rollcall serve config.json            # with config file
  rollcall serve --listen=:9090         # override listen address`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serveFlags.ConfigPath = globalFlags.ConfigPath
			if len(args) > 0 {
				serveFlags.ConfigPath = args[0]
			}
			return runServeCommand(serveFlags)
		},
	}
	cmd.Flags().StringVar(&serveFlags.DataFile, "data-file", "", "override process document path")
	cmd.Flags().StringVar(&serveFlags.Listen, "listen", "", "override listen address")
	return cmd
}

func runServeCommand(flags *ServeFlags) error {
	cfg, err := rollcall.LoadConfig(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if flags.DataFile != "" {
		cfg.DataFile = flags.DataFile
	}
	if flags.Listen != "" {
		cfg.Server.Listen = flags.Listen
	}

	logger := rollcall.NewLogger(rollcall.LoggerConfig{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	mgr := rollcall.New(cfg.DataFile)
	mgr.SetLogger(logger)
	if err := mgr.Load(); err != nil {
		return fmt.Errorf("error loading process document: %w", err)
	}

	if cfg.Notification.Enabled() {
		mgr.EnableDingTalk(cfg.Notification.WebhookURL, cfg.Notification.Secret, logger, 0)
		logger.Info("webhook notifications enabled")
	} else {
		logger.Info("webhook notifications disabled")
	}

	if cfg.History.DSN != "" {
		sink, err := rollcall.NewHistorySink(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("error opening history sink: %w", err)
		}
		mgr.SetHistorySinks(sink)
		logger.Info("history export enabled", "dsn", cfg.History.DSN)
	}

	if err := rollcall.RegisterMetricsDefault(); err != nil {
		fmt.Printf("Warning: failed to register metrics: %v\n", err)
	}
	if cfg.Server.MetricsListen != "" {
		go func() {
			if err := rollcall.ServeMetrics(cfg.Server.MetricsListen); err != nil {
				fmt.Printf("Metrics server error: %v\n", err)
			}
		}()
	}

	server, err := rollcall.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, mgr)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	fmt.Printf("Starting rollcall server on %s%s\n", cfg.Server.Listen, cfg.Server.BasePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	err = server.Close()
	mgr.Wait()
	return err
}
