package main

import (
	"context"
	"fmt"
	"github.com/kglearn/frontgate/internal/api"
	"github.com/kglearn/frontgate/internal/config"
	"github.com/kglearn/frontgate/internal/router"
	"github.com/kglearn/frontgate/internal/storage"
	"github.com/kglearn/frontgate/internal/storage/inmem"
	"github.com/kglearn/frontgate/internal/storage/postgres"
	"github.com/kglearn/frontgate/internal/task"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("config", fmt.Sprintf("%+v", cfg)).Msg("")

	// Load the route table
	table := router.DefaultTable()
	if cfg.RoutesFile != "" {
		log.Info().Str("file", cfg.RoutesFile).Msg("loading route table...")
		table, err = router.LoadTable(cfg.RoutesFile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load the route table")
		}
	}

	// Initialize the server-side storage driver if client records are not kept in cookies
	var driver storage.Driver
	if cfg.UsesServerSideStorage() {
		if cfg.StorageDriver == config.StorageDriverPostgres {
			driver = postgres.New(cfg.PostgresDSN)
		} else {
			driver = inmem.New()
		}
		log.Info().Str("driver", cfg.StorageDriver).Msg("initializing storage driver...")
		if err := driver.Initialize(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("could not initialize the storage driver")
		}
		defer driver.Close()

		// Schedule a task that terminates the records of clients holding expired tokens
		sweepingTask := task.NewRepeating(func() {
			n, err := driver.TerminateExpired(context.Background())
			if err != nil {
				log.Error().Err(err).Msg("could not terminate expired client records")
			} else if n > 0 {
				log.Info().Int("amount", n).Msg("terminated expired client records")
			}
		}, cfg.SweepInterval)
		sweepingTask.Start()
		defer sweepingTask.Stop(false)
	}

	// Start up the front server
	log.Info().Str("address", cfg.ListenAddress()).Str("api_target", cfg.APITarget).Msg("starting up front server...")
	service := &api.Service{
		Config: cfg,
		Driver: driver,
		Table:  table,
	}
	serviceErrs := make(chan error, 1)
	if err := service.Startup(serviceErrs); err != nil {
		log.Fatal().Err(err).Msg("could not start up the front server")
	}
	go func() {
		err := <-serviceErrs
		log.Fatal().Err(err).Msg("the front server raised an unexpected error")
	}()
	defer func() {
		log.Info().Msg("shutting down the front server...")
		service.Shutdown()
	}()

	log.Info().Str("url", cfg.BaseURL()).Msg("done!")
	defer log.Info().Msg("shutting down...")

	// Open the application in the default browser
	if cfg.Open {
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
		if err := browser.OpenURL(cfg.BaseURL()); err != nil {
			log.Warn().Err(err).Msg("could not open the browser")
		}
	}

	// Wait for the application to be terminated
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown
}
