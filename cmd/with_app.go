package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"qctrack/internal/bootstrap"
	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
	"qctrack/internal/usecase/defect"
	"qctrack/internal/usecase/inspection"
	"qctrack/internal/usecase/part"
	"qctrack/internal/usecase/report"
)

type appServices struct {
	Inspections *inspection.Service
	Defects     *defect.Service
	Parts       *part.Service
	Reports     *report.Service
}

func withApp(run func(cmd *cobra.Command, app *bootstrap.App, svc *appServices) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var app *bootstrap.App
		svc := &appServices{}
		fxApp := fx.New(
			bootstrap.Module,
			fx.NopLogger,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&app, &svc.Inspections, &svc.Defects, &svc.Parts, &svc.Reports),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		logger, err := logging.New(cmd.ErrOrStderr(), app.Config.Log.Level, app.Config.Log.Format)
		if err != nil {
			return errs.Wrap(err, "configure logger")
		}
		cmd.SetContext(logging.WithLogger(ctx, logger))

		if err := run(cmd, app, svc); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
