// Package app wires application components together.
package app

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/common"
	"github.com/ternarybob/fiiradar/internal/gateway"
	"github.com/ternarybob/fiiradar/internal/handlers"
	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/scheduler"
	"github.com/ternarybob/fiiradar/internal/storage"
	"github.com/ternarybob/fiiradar/internal/usecases"
)

// App holds all application components and dependencies
type App struct {
	Config     *common.Config
	Logger     arbor.ILogger
	Repository interfaces.FundRepository
	Scheduler  *scheduler.Service

	FundHandler   *handlers.FundHandler
	StatusHandler *handlers.StatusHandler
}

// New builds the application graph: repository (via the degrading
// factory), gateway-backed usecases, scheduler and handlers.
func New(config *common.Config, logger arbor.ILogger) *App {
	repository := storage.NewFactory(config, logger).Repository()

	newGateway := func() interfaces.FundGateway {
		return gateway.NewClient(
			gateway.WithBaseURL(config.Gateway.BaseURL),
			gateway.WithHTTPClient(&http.Client{Timeout: config.Gateway.RequestTimeout}),
			gateway.WithRateLimit(config.Gateway.RequestsPerSecond),
			gateway.WithLogger(logger),
		)
	}

	newScrape := func() scheduler.ScrapeExecutor {
		return usecases.NewScrapeUseCase(repository, newGateway(), config.Scrape.MaxConcurrentRequests, logger)
	}

	newAnalyser := func() *usecases.AnalyseUseCase {
		return usecases.NewAnalyseUseCase(repository, newGateway(), logger)
	}

	schedulerService := scheduler.NewService(repository, newScrape, config.Scrape.BootstrapDelay, logger)

	return &App{
		Config:        config,
		Logger:        logger,
		Repository:    repository,
		Scheduler:     schedulerService,
		FundHandler:   handlers.NewFundHandler(repository, newAnalyser, logger),
		StatusHandler: handlers.NewStatusHandler(repository, schedulerService, logger),
	}
}

// Close stops background work.
func (a *App) Close() {
	a.Scheduler.Stop()
}
