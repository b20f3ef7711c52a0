package model

import (
	"time"

	"github.com/uptrace/bun"
)

// SnapshotRecord is the persisted form of a Snapshot. The snapshot
// itself is stored as a JSON payload so the stored shape stays
// identical to the API output.
type SnapshotRecord struct {
	bun.BaseModel `bun:"table:snapshots"`

	ID         int64     `bun:"id,pk,autoincrement"`
	CapturedAt time.Time `bun:"captured_at,notnull"`
	Payload    []byte    `bun:"payload,notnull,type:jsonb"`
}
