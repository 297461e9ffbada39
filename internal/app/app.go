// Package app wires configuration into the storage handle, cache and
// services shared by both binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/JasjusSirsak/bolususu/internal/core/auth"
	"github.com/JasjusSirsak/bolususu/internal/core/cache"
	"github.com/JasjusSirsak/bolususu/internal/core/config"
	"github.com/JasjusSirsak/bolususu/internal/core/database"
	"github.com/JasjusSirsak/bolususu/internal/core/logger"
	"github.com/JasjusSirsak/bolususu/internal/repo"
	"github.com/JasjusSirsak/bolususu/internal/service"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/router"
)

// Logger builds the process logger from config, with file rotation when enabled.
func Logger(cfg *config.Config) (*zap.Logger, func()) {
	r := cfg.Log.Rotate
	return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Enable:     r.Enable,
		Filename:   r.Filename,
		MaxSizeMB:  r.MaxSizeMB,
		MaxBackups: r.MaxBackups,
		MaxAgeDays: r.MaxAgeDays,
		Compress:   r.Compress,
	})
}

// OpenDB opens the pool and runs migrations when configured.
func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		PrepareStmt:        cfg.DB.PrepareStmt,
		LogWriter:          logger.ToWriter(l.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	return db, nil
}

// OpenCache returns nil when redis is disabled or unreachable; the services
// then read straight from the database.
func OpenCache(cfg *config.Config, l *zap.Logger) *cache.Cache {
	if !cfg.Redis.Enabled {
		return nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		l.Warn("redis unavailable, row cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return c
}

func JWT(cfg *config.Config) *auth.JWTer {
	return &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
}

// Deps builds the services over db and c (c may be nil).
func Deps(cfg *config.Config, l *zap.Logger, db *gorm.DB, c *cache.Cache) router.Deps {
	j := JWT(cfg)
	users := repo.NewUserRepo(db)
	projects := repo.NewProjectRepo(db)
	members := repo.NewMembershipRepo(db)
	authz := service.NewMembershipAuthority(projects, members)
	ttl := time.Duration(cfg.CSV.RowCacheTTLSec) * time.Second

	return router.Deps{
		Log:      l,
		DB:       db,
		HTTP:     cfg.App.HTTP,
		CSV:      cfg.CSV,
		Identity: service.NewIdentityVerifier(j, users),
		Users:    service.NewUserService(users, repo.NewPreferenceRepo(db), j, l),
		Projects: service.NewProjectRegistry(db, projects, members, authz, l),
		Uploads:  service.NewCSVService(db, repo.NewCsvRepo(db), authz, c, ttl, l),
	}
}
