package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Record is the single durable row holding the serialized cart for one
// session/device.
type Record struct {
	SessionID string    `gorm:"primaryKey;column:session_id"`
	Payload   string    `gorm:"column:payload"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName binds the model to its table.
func (Record) TableName() string {
	return "cart_records"
}

// RecordRepository persists cart snapshots in a local sqlite database.
type RecordRepository struct {
	db        *gorm.DB
	sessionID string
}

// OpenSQLite opens (or creates) the local cart database and ensures the
// schema exists.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open cart database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate cart database: %w", err)
	}
	return db, nil
}

// NewRecordRepository binds the repository to the database handle and
// the session the cart record is keyed by.
func NewRecordRepository(db *gorm.DB, sessionID string) (*RecordRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	return &RecordRepository{db: db, sessionID: sessionID}, nil
}

// Load reads the persisted snapshot. A missing record is an empty cart;
// an undecodable payload reports ErrCorruptSnapshot.
func (r *RecordRepository) Load(ctx context.Context) ([]Item, error) {
	var record Record
	err := r.db.WithContext(ctx).
		Where("session_id = ?", r.sessionID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart record: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(record.Payload), &items); err != nil {
		return nil, ErrCorruptSnapshot
	}
	return items, nil
}

// Save rewrites the snapshot for this session.
func (r *RecordRepository) Save(ctx context.Context, items []Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}

	record := Record{
		SessionID: r.sessionID,
		Payload:   string(payload),
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record).Error
}
