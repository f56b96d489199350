package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/fiiradar/internal/app"
	"github.com/ternarybob/fiiradar/internal/common"
	"github.com/ternarybob/fiiradar/internal/server"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Config file path (repeatable, later files override earlier)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Println(common.GetFullVersion())
		return
	}

	config, err := common.LoadConfig(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *serverPort != 0 {
		config.Server.Port = *serverPort
	} else if *serverPortP != 0 {
		config.Server.Port = *serverPortP
	}
	if *serverHost != "" {
		config.Server.Host = *serverHost
	}

	common.PrintBanner(common.GetVersion())

	logger := common.InitLogger(config)

	application := app.New(config, logger)
	defer application.Close()

	httpServer := server.New(application)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	// Seed the store once the server is up, then keep it fresh.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		application.Scheduler.Bootstrap(ctx)
		if err := application.Scheduler.Start(config.Scrape.RefreshSchedule); err != nil {
			logger.Error().Err(err).Msg("Failed to start refresh scheduler")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server shutdown was not clean")
	}
}
