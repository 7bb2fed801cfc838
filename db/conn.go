// Package db opens the configured database backend
package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Abhishek5chawan/WhisperLink/internal/model"
	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New picks the store from storage.type
func New(ctx context.Context) (store.Store, error) {
	switch viper.GetString("storage.type") {
	case "sqlite":
		path := viper.GetString("storage.sqlite_path")

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if isRunningInDocker() {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", path)
			}
		}

		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}

		return store.NewGormStore(db), nil
	case "postgres":
		db, err := OpenPostgres(viper.GetString("storage.postgres_dsn"))
		if err != nil {
			return nil, err
		}

		return store.NewGormStore(db), nil
	case "mongo":
		return store.NewMongoStore(ctx, viper.GetString("storage.mongo_uri"), viper.GetString("storage.mongo_database"))
	default:
		return nil, errors.New("invalid storage type provided")
	}
}

func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite database, %w", err)
	}

	return db, migrate(db)
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres database, %w", err)
	}

	return db, migrate(db)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Message{}); err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}

func isRunningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
