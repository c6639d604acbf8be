package database

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/peek/v1/logger"
)

// FXModule provides a *gorm.DB via dependency injection.
// The dialect (postgres or mariadb) is selected from Config.Type.
//
// Usage:
//
//	app := fx.New(
//	    database.FXModule,
//	    fx.Provide(func() database.Config {
//	        return database.PostgresConfig(database.Connection{...})
//	    }),
//	)
var FXModule = fx.Module("database",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterDatabaseLifecycle),
)

// DatabaseParams groups the dependencies needed to create a database client
type DatabaseParams struct {
	fx.In

	Config Config
}

// DatabaseLifecycleParams groups the dependencies needed for database lifecycle management
type DatabaseLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	DB        *gorm.DB
	Config    Config
	Logger    logger.Logger `optional:"true"`
}

// NewClientWithDI opens the database described by the injected Config.
func NewClientWithDI(params DatabaseParams) (*gorm.DB, error) {
	return Open(params.Config)
}

// RegisterDatabaseLifecycle closes the underlying connection pool when the
// application stops.
func RegisterDatabaseLifecycle(params DatabaseLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sqlDB, err := params.DB.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			if params.Logger != nil {
				params.Logger.Info("Database client initialized", nil, map[string]interface{}{"type": params.Config.Type})
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sqlDB, err := params.DB.DB()
			if err != nil {
				return err
			}
			if params.Logger != nil {
				params.Logger.Info("Shutting down database client", nil)
			}
			return sqlDB.Close()
		},
	})
}
