package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aleph-Alpha/peek/v1/database"
)

// Store persists measurements through gorm. It is safe for concurrent use.
type Store struct {
	db          *gorm.DB
	owned       bool
	autoMigrate bool
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithAutoMigrate controls whether New creates or updates the table.
// Enabled by default.
func WithAutoMigrate(enabled bool) Option {
	return func(s *Store) { s.autoMigrate = enabled }
}

// WithClock overrides the time source used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store on an existing connection. The caller keeps ownership
// of db; Close does not close it.
func New(db *gorm.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: nil database")
	}
	s := &Store{
		db:          db,
		autoMigrate: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.autoMigrate {
		if err := db.AutoMigrate(&Measurement{}); err != nil {
			return nil, fmt.Errorf("sqlstore: migrate %s: %w", TableName, err)
		}
	}
	return s, nil
}

// Open connects to the database described by cfg and returns a Store that
// owns the connection.
func Open(cfg database.Config, opts ...Option) (*Store, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: %w", err)
	}
	s, err := New(db, opts...)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	s.owned = true
	return s, nil
}

// Save upserts value as JSON under (requestID, key).
func (s *Store) Save(ctx context.Context, requestID, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("sqlstore: encode %q: %w", key, err)
	}

	m := Measurement{
		RequestID: requestID,
		Key:       key,
		Value:     string(encoded),
		UpdatedAt: s.now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("sqlstore: save %q: %w", key, err)
	}
	return nil
}

// Get returns the decoded measurements of a request. Unknown requests yield
// an empty map.
func (s *Store) Get(ctx context.Context, requestID string) (map[string]any, error) {
	var rows []Measurement
	if err := s.db.WithContext(ctx).Where("request_id = ?", requestID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: get %q: %w", requestID, err)
	}

	out := make(map[string]any, len(rows))
	for _, row := range rows {
		var v any
		if err := json.Unmarshal([]byte(row.Value), &v); err != nil {
			return nil, fmt.Errorf("sqlstore: decode %q: %w", row.Key, err)
		}
		out[row.Key] = v
	}
	return out, nil
}

type requestRow struct {
	RequestID string
	LastWrite time.Time
}

// Requests lists stored request ids, oldest write first.
func (s *Store) Requests(ctx context.Context) ([]string, error) {
	var rows []requestRow
	err := s.db.WithContext(ctx).
		Model(&Measurement{}).
		Select("request_id, MAX(updated_at) AS last_write").
		Group("request_id").
		Order("last_write, request_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list requests: %w", err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.RequestID
	}
	return ids, nil
}

// Purge deletes requests whose last write is older than olderThan.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-olderThan)

	var ids []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Measurement{}).
			Group("request_id").
			Having("MAX(updated_at) < ?", cutoff).
			Pluck("request_id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("request_id IN ?", ids).Delete(&Measurement{}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("sqlstore: purge: %w", err)
	}
	return len(ids), nil
}

// Reset deletes every stored measurement.
func (s *Store) Reset(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&Measurement{}).Error
	if err != nil {
		return fmt.Errorf("sqlstore: reset: %w", err)
	}
	return nil
}

// Close releases the connection pool when the Store created it through Open.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
