package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tariff-observer/src/grpc_control"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"
	"tariff-observer/src/server"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

func newServeCmd(a *app) *cobra.Command {
	var noGRPC bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP, websocket and gRPC",
		Long: `Builds the dashboard once, then serves it and rebuilds it every
analysis.refresh_interval_seconds. Every rebuild is pushed to websocket
clients.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), !noGRPC)
		},
	}
	cmd.Flags().BoolVar(&noGRPC, "no-grpc", false, "do not start the gRPC control server")
	return cmd
}

// -----------------------------------------------------------------------------

func (a *app) serve(parent context.Context, withGRPC bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, svc, err := a.build(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := server.NewAPIServer(a.cfg.MConfig, svc, svc.Metrics.Handler(), logger.NewLogger(a.cfg.MConfig, "APIServer"))
	srv.UpdateAllDatas(d)

	errs := make(chan error, 2)
	go func() {
		errs <- srv.Start()
	}()
	defer srv.Stop()

	if withGRPC {
		addr := fmt.Sprintf("%s:%d", a.cfg.GrpcHost, a.cfg.GrpcPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
		}
		grpcServer := grpc.NewServer()
		grpc_control.RegisterDashboardControlServer(grpcServer,
			grpc_control.NewControlService(svc, srv, logger.NewLogger(a.cfg.MConfig, "ControlService")))
		a.log.Info("Starting gRPC control server on %s", addr)
		go func() {
			errs <- grpcServer.Serve(lis)
		}()
		defer grpcServer.GracefulStop()
	}

	interval := time.Duration(a.cfg.Analysis.RefreshIntervalSeconds) * time.Second
	go svc.Run(ctx, interval, func(d *models.MDashboard) {
		srv.Publish(d)
	})

	select {
	case <-ctx.Done():
		a.log.Info("Shutting down...")
		return nil
	case err := <-errs:
		if err != nil {
			a.log.Error("Server failed: %v", err)
		}
		return err
	}
}
