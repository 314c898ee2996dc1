package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ai-chat-be/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c GormConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true, // Ignore ErrRecordNotFound error for logger
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	// SetMaxIdleConns sets the maximum number of connections in the idle connection pool.
	sqlDB.SetMaxIdleConns(10)

	// SetMaxOpenConns sets the maximum number of open connections to the database.
	sqlDB.SetMaxOpenConns(maxOpen)

	// SetConnMaxLifetime sets the maximum amount of time a connection may be reused.
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// IsSQLite reports whether dsn names a sqlite database instead of postgres.
func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || strings.HasPrefix(dsn, "sqlite:") || strings.HasSuffix(dsn, ".db")
}

// Open connects to postgres, or to sqlite for "file:"/"sqlite:" DSNs used
// in local development and tests. Driver errors are translated so that
// unique violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         getLogger(level),
		TranslateError: true,
	}

	if IsSQLite(dsn) {
		db, err := gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, "sqlite:")), gormCfg)
		if err != nil {
			return nil, err
		}
		// One connection keeps an in-memory database alive and serializes writers.
		if err := configureConnectionPool(db, 1); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}
	if err := configureConnectionPool(db, 100); err != nil {
		return nil, err
	}
	return db, nil
}

func NewGormDB(cfg GormConfig) (*gorm.DB, error) {
	return Open(cfg.DSN(), logger.Warn)
}

func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return Open(dsn, logger.Warn)
}

// Models lists every table owned by the application.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Chat{},
		&model.Message{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
