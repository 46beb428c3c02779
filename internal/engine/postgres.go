package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/celerix-dev/celerix-records/internal/engine/migrations"
	"github.com/celerix-dev/celerix-records/pkg/engine"
)

type documentModel struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Collection string         `gorm:"type:text;not null;index"`
	Body       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (documentModel) TableName() string { return "documents" }

func (m documentModel) toDocument() engine.Document {
	return engine.Document(m.Body).Clone()
}

// ConnectPostgres opens a GORM session over the pgx driver.
func ConnectPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return database, nil
}

// MigratePostgres applies the embedded schema migrations.
func MigratePostgres(ctx context.Context, dsn string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return goose.UpContext(ctx, sqlDB, ".")
}

// PostgresStore keeps every collection in one jsonb table.
type PostgresStore struct {
	orm *gorm.DB
}

// NewPostgresStore wraps an open GORM session.
func NewPostgresStore(orm *gorm.DB) *PostgresStore {
	return &PostgresStore{orm: orm}
}

func (s *PostgresStore) InsertOne(ctx context.Context, collection string, id uuid.UUID, doc engine.Document) error {
	if !doc.Valid() {
		return fmt.Errorf("insert into %s: document is not a JSON object", collection)
	}
	stamped, err := doc.WithID(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	model := documentModel{
		ID:         id,
		Collection: collection,
		Body:       datatypes.JSON(stamped),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.orm.WithContext(ctx).Create(&model).Error
}

func (s *PostgresStore) FindOne(ctx context.Context, collection string, id uuid.UUID) (engine.Document, error) {
	var model documentModel
	err := s.orm.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return model.toDocument(), nil
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filter *engine.Filter) ([]engine.Document, error) {
	q := s.orm.WithContext(ctx).Where("collection = ?", collection)
	// String equality runs in SQL; everything else is checked on the decoded rows below.
	for _, p := range filter.Predicates() {
		if v, ok := p.Value.(string); ok && p.Op == engine.OpEq {
			q = q.Where(datatypes.JSONQuery("body").Equals(v, p.Field))
		}
	}

	var models []documentModel
	if err := q.Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	docs := make([]engine.Document, 0, len(models))
	for _, m := range models {
		doc := m.toDocument()
		if filter.Match(doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *PostgresStore) UpdateOne(ctx context.Context, collection string, id uuid.UUID, set map[string]any) error {
	return s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model documentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND id = ?", collection, id).
			First(&model).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return engine.ErrNotFound
			}
			return err
		}

		merged, err := model.toDocument().Merge(set)
		if err != nil {
			return err
		}
		return tx.Model(&model).Updates(map[string]any{
			"body":       datatypes.JSON(merged),
			"updated_at": time.Now().UTC(),
		}).Error
	})
}

func (s *PostgresStore) DeleteOne(ctx context.Context, collection string, id uuid.UUID) (engine.Document, error) {
	var deleted engine.Document
	err := s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model documentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND id = ?", collection, id).
			First(&model).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return engine.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&model).Error; err != nil {
			return err
		}
		deleted = model.toDocument()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *PostgresStore) CountBy(ctx context.Context, collection, field string) ([]engine.Group, error) {
	var rows []struct {
		Key   *string
		Count int64
	}
	err := s.orm.WithContext(ctx).
		Model(&documentModel{}).
		Select("body->>? AS key, count(*) AS count", field).
		Where("collection = ?", collection).
		Group("1").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make([]engine.Group, 0, len(rows))
	for _, r := range rows {
		g := engine.Group{Count: r.Count}
		if r.Key != nil {
			g.Key = *r.Key
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.orm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.orm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
