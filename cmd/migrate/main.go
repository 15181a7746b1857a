package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"threaded_comments/internal/pkg/config"
	"threaded_comments/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// 用法: migrate [up|down|force N]，默认 up
func main() {
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GlobalConfig

	zlog, err := logger.Init(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	m, err := migrate.New("file://migrations", cfg.Database.URL())
	if err != nil {
		zlog.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, os.Args[1:]); err != nil {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			zlog.Fatal("Database is dirty, fix the schema and run `migrate force N`",
				zap.Int("version", dirty.Version))
		}
		zlog.Fatal("Migration failed", zap.Error(err))
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		zlog.Fatal("Failed to read version", zap.Error(err))
	}
	zlog.Info("Migration successful", zap.Uint("version", version), zap.Bool("dirty", dirty))
}

func run(m *migrate.Migrate, args []string) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}

	var err error
	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "force":
		if len(args) < 2 {
			return errors.New("force requires a version")
		}
		v, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], convErr)
		}
		err = m.Force(v)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
