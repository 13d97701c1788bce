/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"qctrack/internal/bootstrap"
	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
)

const shutdownTimeout = 15 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		handler := newAPIHandler(svc.Inspections, svc.Defects, svc.Parts, svc.Reports, apiConfig{
			RequestTimeout: app.Config.Server.RequestTimeout,
			CSVEncoding:    app.Config.Report.CSVEncoding,
		})
		server := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- server.ListenAndServe()
		}()

		logging.Info(ctx, "api server started", slog.String("addr", addr))

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "api server failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve api")
			}
			return nil
		case <-signalCtx.Done():
		}

		logging.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Error(ctx, "api server shutdown failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "shutdown api server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address, defaults to server.addr from config")
}
