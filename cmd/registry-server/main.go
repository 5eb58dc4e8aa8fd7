package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/legal-document-registry/cmd/flags"
	"github.com/ruteri/legal-document-registry/httpserver"
)

func main() {
	app := &cli.App{
		Name:  "registry-server",
		Usage: "Serve the legal document registry API",
		Flags: append(append(append([]cli.Flag{}, flags.ConfigFlags...), flags.ServerFlags...), flags.LogFlags...),
		Action: func(cCtx *cli.Context) error {
			cfg, err := flags.LoadConfig(cCtx)
			if err != nil {
				return err
			}

			logger := flags.SetupLogger(cCtx, &cfg.Logging, nil)

			if err := flags.ResolveSecrets(cfg, logger); err != nil {
				logger.Error("Failed to resolve secrets", "err", err)
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			components, err := flags.NewComponents(ctx, cfg, logger)
			cancel()
			if err != nil {
				logger.Error("Failed to set up components", "err", err)
				return err
			}
			defer components.Close()

			logger.Info("Content store configured",
				"store", components.Store.Name(),
				"location", components.Store.LocationURI(),
				"maxUploadSize", cfg.Storage.MaxUploadSize)

			handler := httpserver.NewHandler(
				components.NewPublisher(cfg, logger),
				components.NewLister(cfg, logger),
				components.Registry,
				cfg.Workflow.MaxDrafts,
				cfg.Storage.GatewayURL,
				logger,
			)

			server, err := httpserver.New(flags.ConfigureServer(&cfg.Server, logger), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

