package store

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormClient persists records in a single Postgres table with a JSONB data
// column. Equality filters are evaluated against top-level JSON fields.
type GormClient struct {
	db *gorm.DB
}

// Connect opens the database connection and runs migrations.
func Connect(dsn string) (*GormClient, error) {
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}

	return &GormClient{db: db}, nil
}

func (c *GormClient) Get(ctx context.Context, kind, id string) (*Record, error) {
	var rec Record
	err := c.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *GormClient) Put(ctx context.Context, kind string, e Entity) (string, error) {
	if e.EntityID() == "" {
		e.SetEntityID(uuid.NewString())
	}
	data, err := encode(e)
	if err != nil {
		return "", err
	}
	rec := Record{Kind: kind, ID: e.EntityID(), Data: data}
	err = c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (c *GormClient) Delete(ctx context.Context, kind, id string) error {
	return c.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Delete(&Record{}).Error
}

func (c *GormClient) List(ctx context.Context, kind string, filter *Filter, opts ListOptions) ([]Record, bool, error) {
	query := c.db.WithContext(ctx).
		Model(&Record{}).
		Where("kind = ?", kind).
		Order("created_at, id")
	if filter != nil {
		query = query.Where("data ->> ? = ?", filter.Field, filter.Value)
	}

	if opts.Limit <= 0 {
		var recs []Record
		if err := query.Offset(opts.Offset).Find(&recs).Error; err != nil {
			return nil, false, err
		}
		return recs, false, nil
	}

	// Fetch one past the window to learn whether a next page exists.
	var recs []Record
	if err := query.Offset(opts.Offset).Limit(opts.Limit + 1).Find(&recs).Error; err != nil {
		return nil, false, err
	}
	more := len(recs) > opts.Limit
	if more {
		recs = recs[:opts.Limit]
	}
	return recs, more, nil
}
