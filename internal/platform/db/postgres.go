package db

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fatflowers/sagepay/internal/models"
	cfgpkg "github.com/fatflowers/sagepay/pkg/config"
	gormzap "github.com/fatflowers/sagepay/pkg/gormlog"
)

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	db, err := Open(cfg.Database.DSN, gormzap.New(l, cfg.Env != cfgpkg.EnvProd))
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	l.Infow("connected to postgres via DSN")
	return db, nil
}

// Open connects to dsn. Shared with the integration tests, which point it
// at a throwaway container.
func Open(dsn string, logger *gormzap.ZapLogger) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if logger != nil {
		cfg.Logger = logger
	}
	return gorm.Open(postgres.Open(dsn), cfg)
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// Models lists every table owned by the bridge, in dependency order.
var Models = []any{
	&models.Transaction{},
	&models.RegistrationResult{},
	&models.NotificationResult{},
	&models.CardToken{},
	&models.PaymentNotificationLog{},
}

// AutoMigrate runs GORM migrations on startup
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}
