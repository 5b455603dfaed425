package db

import (
	"fmt"
	"strings"
	"time"

	"loan-management/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open picks the dialector from cfg.DBDriver and opens a pooled, pinged connection.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dial = sqlite.Open(cfg.SQLitePath)
	case config.DriverMySQL:
		dial = mysql.Open(cfg.MySQLDSN())
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	db, err := OpenGormWithDialector(dial, LogLevel(cfg.DBLogLevel))
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == config.DriverSQLite {
		// single writer; avoids "database is locked" under concurrent requests
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// OpenGorm opens a MySQL connection from a DSN.
func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), logger.Info)
}

func OpenGormWithDialector(dial gorm.Dialector, level ...logger.LogLevel) (*gorm.DB, error) {
	lvl := logger.Warn
	if len(level) > 0 {
		lvl = level[0]
	}
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(lvl),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func LogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
