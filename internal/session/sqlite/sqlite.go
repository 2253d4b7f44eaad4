package sqlite

import (
	"context"
	"errors"
	"fmt"

	sessionDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type SessionRepository struct {
	db *gorm.DB
}

// Open connects to the sqlite file at path and migrates the entry table.
func Open(path string) (*SessionRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	return NewSessionRepository(db)
}

func NewSessionRepository(db *gorm.DB) (*SessionRepository, error) {
	if err := db.AutoMigrate(&sessionDatamodel.Entry{}); err != nil {
		return nil, fmt.Errorf("migrate session entries: %w", err)
	}
	return &SessionRepository{db: db}, nil
}

func (r *SessionRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry sessionDatamodel.Entry
	err := r.db.WithContext(ctx).Where("name = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *SessionRepository) Set(ctx context.Context, key, value string) error {
	entry := sessionDatamodel.Entry{Name: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("name = ?", key).Delete(&sessionDatamodel.Entry{}).Error
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&sessionDatamodel.Entry{}).Error
}

func (r *SessionRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
