// Package database owns the gorm connection shared by the services.
package database

import (
	"errors"
	"log"

	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/database/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	db     *gorm.DB
	dbType config.DatabaseType
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.News{},
		&model.Comment{},
		&model.Setting{},
	}
	// one call so gorm orders tables by their foreign keys
	if err := db.AutoMigrate(models...); err != nil {
		log.Printf("Error auto migrating models: %v", err)
		return err
	}
	return nil
}

// InitDB opens the configured database, tunes it and migrates the schema.
func InitDB(cfg *config.DatabaseConfig) error {
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectoryExists(); err != nil {
		return err
	}

	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	var dialector gorm.Dialector
	if cfg.IsPostgreSQL() {
		dialector = postgres.Open(cfg.GetDSN())
	} else {
		dialector = sqlite.Open(cfg.GetDSN())
	}

	var err error
	db, err = gorm.Open(dialector, c)
	if err != nil {
		return err
	}
	dbType = cfg.Type

	if cfg.IsSQLite() {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		pragmas := []string{
			"PRAGMA cache_size = -64000;",
			"PRAGMA temp_store = MEMORY;",
			"PRAGMA foreign_keys = ON;",
		}
		for _, pragma := range pragmas {
			if _, err := sqlDB.Exec(pragma); err != nil {
				return err
			}
		}
	}

	return initModels()
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	if dbType == config.DatabaseTypeSQLite {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	db = nil
	return err
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Checkpoint flushes the SQLite write-ahead log into the main file.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
