package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

func txGorm(tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := txGorm(tx)
	if err != nil {
		return err
	}
	return applySchema(ctx, gormDB)
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := txGorm(tx)
	if err != nil {
		return err
	}
	return dropSchema(ctx, gormDB)
}
