package database

import (
	"database/sql"
	"fmt"
	"time"

	"threaded_comments/internal/pkg/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDatabase 初始化数据库连接
func InitDatabase(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	// 配置 GORM
	gormConfig := &gorm.Config{
		Logger:      NewGormLogger(log, ParseGormLevel(cfg.LogLevel)),
		PrepareStmt: true, // 预编译 SQL 缓存
		// 把外键、唯一键冲突翻译成 gorm.ErrForeignKeyViolated / ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层 SQL DB 对象以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// 连接池配置
	configureConnectionPool(sqlDB)
	log.Info("Database connection pool configured",
		zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))

	// 表结构由 cmd/migrate 管理，这里不做 AutoMigrate
	return db, nil
}

// configureConnectionPool 配置数据库连接池
func configureConnectionPool(sqlDB *sql.DB) {
	// 设置连接池中的最大连接数
	sqlDB.SetMaxOpenConns(100)

	// 设置连接池中的最大空闲连接数
	sqlDB.SetMaxIdleConns(10)

	// 设置连接的最大生命周期
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 设置连接的最大空闲时间
	sqlDB.SetConnMaxIdleTime(time.Minute * 30)
}
