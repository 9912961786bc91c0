// Package commands – serve.go runs the demo backend: the in-memory
// simulator behind a gateway endpoint, for developing the dashboard without
// a live orchestrator.
package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/missionctl/pkg/missionctl/gateway"
	"github.com/jholhewres/missionctl/pkg/missionctl/sim"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo orchestrator gateway",
		Long: `Run an in-memory demo orchestrator behind a WebSocket gateway.
Seeded agents run synthetic heartbeats on a schedule and progress their
tasks, so a connected dashboard has live data to render.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":7180", "listen address")
	cmd.Flags().String("workspace", "default", "demo workspace id")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	_, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	workspace, _ := cmd.Flags().GetString("workspace")

	simulator := sim.New(workspace, nil, logger)
	srv := gateway.NewServer(simulator, logger)
	simulator.SetBroadcaster(srv)

	if err := simulator.Start(); err != nil {
		return err
	}
	defer simulator.Stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)

	httpSrv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("demo gateway listening", "addr", addr, "workspace", workspace)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
