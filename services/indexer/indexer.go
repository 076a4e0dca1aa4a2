package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"celebmint/core/events"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultLimit = 100
	maxLimit     = 1000
)

var errNilDB = errors.New("indexer: database required")

// Open connects to the relational store selected by driver.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("indexer: unsupported driver %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

// Event is the API view of an indexed event.
type Event struct {
	ID         string            `json:"id"`
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Filter narrows an event query.
type Filter struct {
	Type  string
	After uint64
	Limit int
}

// Indexer persists every committed ledger event it receives and serves them
// back in commit order.
type Indexer struct {
	db     *gorm.DB
	logger *slog.Logger
	nowFn  func() time.Time

	mu   sync.Mutex
	next uint64
}

// New migrates db and resumes sequencing after the last stored event.
func New(db *gorm.DB, log *slog.Logger) (*Indexer, error) {
	if db == nil {
		return nil, errNilDB
	}
	if log == nil {
		log = slog.Default()
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("indexer: migrate: %w", err)
	}
	var last EventRecord
	err := db.Order("sequence desc").Limit(1).Find(&last).Error
	if err != nil {
		return nil, fmt.Errorf("indexer: load sequence: %w", err)
	}
	next := uint64(1)
	if last.Sequence > 0 {
		next = last.Sequence + 1
	}
	return &Indexer{
		db:     db,
		logger: log.With(slog.String("component", "indexer")),
		nowFn:  func() time.Time { return time.Now().UTC() },
		next:   next,
	}, nil
}

// Emit implements events.Emitter. Events without a wire form are skipped.
func (ix *Indexer) Emit(evt events.Event) {
	if ix == nil || evt == nil {
		return
	}
	payload, ok := evt.(events.Payload)
	if !ok {
		return
	}
	if err := ix.Record(context.Background(), payload); err != nil {
		ix.logger.Error("failed to index event", slog.String("type", evt.EventType()), slog.Any("error", err))
	}
}

// Record stores a single event.
func (ix *Indexer) Record(ctx context.Context, payload events.Payload) error {
	wire := payload.Event()
	if wire == nil {
		return nil
	}
	attrs, err := json.Marshal(wire.Attributes)
	if err != nil {
		return fmt.Errorf("indexer: encode attributes: %w", err)
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	rec := EventRecord{
		ID:         uuid.New(),
		Sequence:   ix.next,
		Type:       wire.Type,
		Attributes: string(attrs),
		CreatedAt:  ix.nowFn(),
	}
	if err := ix.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	ix.next++
	return nil
}

// Query returns events matching the filter in commit order.
func (ix *Indexer) Query(ctx context.Context, filter Filter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	q := ix.db.WithContext(ctx).Model(&EventRecord{}).Where("sequence > ?", filter.After)
	if t := strings.TrimSpace(filter.Type); t != "" {
		q = q.Where("type = ?", t)
	}
	var rows []EventRecord
	if err := q.Order("sequence asc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(rows))
	for _, row := range rows {
		attrs := map[string]string{}
		if row.Attributes != "" {
			if err := json.Unmarshal([]byte(row.Attributes), &attrs); err != nil {
				return nil, fmt.Errorf("indexer: decode event %d: %w", row.Sequence, err)
			}
		}
		out = append(out, Event{
			ID:         row.ID.String(),
			Sequence:   row.Sequence,
			Type:       row.Type,
			Attributes: attrs,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}
