// Package migrations holds the goose migrations for the Postgres backend.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FS exposes the migration sources so goose can discover them by version.
//
//go:embed *.go
var FS embed.FS

func init() {
	goose.AddMigrationContext(upDocuments, downDocuments)
}

type Document struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Collection string         `gorm:"type:text;not null;index"`
	Body       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (Document) TableName() string { return "documents" }

func openTx(tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func upDocuments(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openTx(tx)
	if err != nil {
		return err
	}
	if err := gormDB.WithContext(ctx).AutoMigrate(&Document{}); err != nil {
		return err
	}
	// email is the only grouped field; index it for count-by-email
	return gormDB.WithContext(ctx).
		Exec(`CREATE INDEX IF NOT EXISTS idx_documents_email ON documents ((body->>'email'))`).Error
}

func downDocuments(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openTx(tx)
	if err != nil {
		return err
	}
	return gormDB.WithContext(ctx).Migrator().DropTable(&Document{})
}
