package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"primes/internal/api"
	"primes/internal/api/handler/v1handler"
	"primes/internal/config"
	"primes/internal/scanner"
	"primes/internal/worker"
	"primes/pkg/logger"
	"primes/pkg/metrics"
	"primes/pkg/primality"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, s scanner.Scanner) func(ctx context.Context) {
	server, err := api.NewServer(api.Deps{Deps: v1handler.Deps{
		Scanner:      s,
		DefaultRange: primality.Range{Upper: cfg.Scanner.DefaultUpper, Inclusive: cfg.Scanner.DefaultInclusive},
	}}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// serveCommand constructs the 'serve' subcommand running the API server and
// the background scan workers until interrupted.
func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mp, err := api.NewMeterProvider()
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}
			m, err := metrics.NewScannerFromMeter(mp.Meter("primes"))
			if err != nil {
				logger.Fatal(ctx, "could not create metrics", zap.Error(err))
			}

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			s, err := scanner.New(strg, m, scanner.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create scanner", zap.Error(err))
			}

			riverClient, err := worker.Start(ctx, strg.Pool, s, worker.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, s)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(shutdownCtx, "stopping workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop workers", zap.Error(err))
			}
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not shut down meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
