package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"qctrack/internal/bootstrap/config"
	"qctrack/internal/bootstrap/database"
	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/domain/fiscal"
	cacheinfra "qctrack/internal/infrastructure/cache"
	"qctrack/internal/infrastructure/events"
	gormrepo "qctrack/internal/infrastructure/persistence/gormstore/repository"
	gormuow "qctrack/internal/infrastructure/persistence/gormstore/uow"
	"qctrack/internal/ports"
	"qctrack/internal/usecase/defect"
	"qctrack/internal/usecase/inspection"
	"qctrack/internal/usecase/part"
	"qctrack/internal/usecase/report"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(provideCalendar),
	fx.Provide(
		fx.Annotate(
			gormrepo.NewInspectionRepository,
			fx.As(new(ports.InspectionRepository)),
			fx.As(new(ports.InspectionReadRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			gormrepo.NewDefectRepository,
			fx.As(new(ports.DefectRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			gormrepo.NewPartRepository,
			fx.As(new(ports.PartRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			gormrepo.NewReportRepository,
			fx.As(new(ports.ReportRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			gormuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewReportCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideEventPublisher),
	fx.Provide(provideInspectionOptions),
	fx.Provide(inspection.NewService),
	fx.Provide(defect.NewService),
	fx.Provide(part.NewService),
	fx.Provide(provideReportService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideCalendar(cfg config.Config) (fiscal.Calendar, error) {
	return fiscal.New(cfg.Calendar.FiscalStartMonth, cfg.Calendar.WeekStart)
}

// provideEventPublisher connects to NATS when events.nats_url is set and drops events otherwise.
func provideEventPublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventPublisher, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	url := strings.TrimSpace(cfg.Events.NATSURL)
	if url == "" {
		logging.Debug(logCtx, "event publishing disabled")
		return events.Noop{}, nil
	}

	publisher, err := events.DialNATS(url, cfg.Events.SubjectPrefix)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	logging.Info(logCtx, "event publishing enabled", slog.String("nats_url", url))
	return publisher, nil
}

func provideInspectionOptions(cfg config.Config, calendar fiscal.Calendar) (inspection.Options, error) {
	catalog, err := inspection.LoadStationCatalog(cfg.Stations.CatalogFile)
	if err != nil {
		return inspection.Options{}, err
	}
	return inspection.Options{
		Calendar:             calendar,
		Catalog:              catalog,
		DerivedStation:       cfg.Stations.DerivedStation,
		FallbackOnStoreError: cfg.Numbering.FallbackOnStoreError,
		MaxAttempts:          cfg.Numbering.MaxAttempts,
	}, nil
}

func provideReportService(repo ports.ReportRepository, cache ports.Cache, cfg config.Config) *report.Service {
	return report.NewService(repo, cache, cfg.Report.CacheTTL)
}
