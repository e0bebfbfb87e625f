package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"pinkong/internal/bootstrap/config"
	"pinkong/internal/bootstrap/database"
	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/infrastructure/generative"
	sqliterepo "pinkong/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "pinkong/internal/infrastructure/persistence/sqlite/uow"
	"pinkong/internal/ports"
	"pinkong/internal/usecase/docchain"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewQualityRepository,
			fx.As(new(ports.QualityRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideContentModel,
			fx.As(new(ports.ContentModel)),
		),
	),
	fx.Provide(docchain.NewService),
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

func provideContentModel(ctx context.Context, cfg config.Config) *generative.OpenAIModel {
	if !cfg.Generative.Configured() {
		logging.Warn(
			logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")),
			"generative service not configured, content falls back to synthesis",
		)
	}
	return generative.NewOpenAIModel(cfg.Generative)
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
