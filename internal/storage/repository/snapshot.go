// Package repository contains the database repositories.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/alexandermaffei/matera-film-scraper/internal/model"
)

// SnapshotRepository persists scraped snapshots.
type SnapshotRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *bun.DB, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

// Init creates the snapshots table if it does not exist yet.
func (r *SnapshotRepository) Init(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*model.SnapshotRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// Save stores a snapshot as a new row.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *model.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	capturedAt, err := time.Parse(time.RFC3339, snapshot.Timestamp)
	if err != nil {
		capturedAt = time.Now()
	}

	record := &model.SnapshotRecord{
		CapturedAt: capturedAt,
		Payload:    payload,
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	r.logger.Debug("Snapshot persisted",
		zap.Int64("id", record.ID),
		zap.Time("captured_at", record.CapturedAt))

	return nil
}

// Latest returns the most recent snapshot, or nil when the table is
// empty.
func (r *SnapshotRepository) Latest(ctx context.Context) (*model.Snapshot, error) {
	record := new(model.SnapshotRecord)

	err := r.db.NewSelect().
		Model(record).
		Order("captured_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(record.Payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot payload: %w", err)
	}

	return &snapshot, nil
}
