package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/rshade/solar-mining-viability/internal/config"
	"github.com/rshade/solar-mining-viability/internal/metrics"
	"github.com/rshade/solar-mining-viability/internal/rpc"
	"github.com/rshade/solar-mining-viability/internal/server"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (and the gRPC service when grpc_addr is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, logger)
		},
	}
}

// runServe serves until ctx is cancelled, then shuts both listeners down
// within shutdownTimeout.
func runServe(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	rec := metrics.New()
	svc, err := newService(cfg, newQuoter(cfg, logger, rec), logger, rec)
	if err != nil {
		return fmt.Errorf("load reference catalog: %w", err)
	}

	params := svc.Calculator().Params()
	logger.Info().
		Float64("network_hashrate_ths", params.Mining.NetworkHashrateTHs).
		Float64("block_reward_btc", params.Mining.BlockRewardBTC).
		Float64("blocks_per_day", params.Mining.BlocksPerDay).
		Float64("days_per_month", params.Mining.DaysPerMonth).
		Float64("system_efficiency", params.SystemEfficiency).
		Bool("test_mode", params.TestMode).
		Msg("calculator configured")

	httpServer := server.New(svc, cfg.CORS, rec, logger).NewHTTPServer(cfg.HTTPAddr)

	var grpcServer *grpc.Server
	errCh := make(chan error, 2)

	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
		}
		grpcServer = rpc.New(svc, rec, logger).NewGRPCServer()
		go func() {
			logger.Info().Str("addr", lis.Addr().String()).Msg("starting gRPC server")
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error().Err(serveErr).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if grpcServer != nil {
		stopGRPC(shutdownCtx, grpcServer, logger)
	}

	logger.Info().Msg("server stopped")
	return serveErr
}

// stopGRPC drains in-flight calls, forcing a stop when ctx expires.
func stopGRPC(ctx context.Context, gs *grpc.Server, logger zerolog.Logger) {
	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn().Msg("gRPC graceful stop timed out, forcing stop")
		gs.Stop()
	}
}
