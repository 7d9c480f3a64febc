package store

import (
	"context"
	"encoding/json"
	"time"

	"NFTAuctionHouse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Journal appends every published auction event to Postgres for external indexers.
type Journal struct {
	Pool *pgxpool.Pool
}

func NewJournal(pool *pgxpool.Pool) *Journal {
	return &Journal{Pool: pool}
}

type JournalEntry struct {
	ID        string
	AuctionID string
	Type      models.EventType
	Event     models.Event
	CreatedAt time.Time
}

func (j *Journal) Emit(ctx context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = j.Pool.Exec(ctx, `
		INSERT INTO auction_events (id, auction_id, type, payload, occurred_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		uuid.NewString(),
		ev.AuctionID,
		string(ev.Type),
		payload,
		ev.At,
	)
	return err
}

func (j *Journal) ListEvents(ctx context.Context, auctionID string, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT id, auction_id, type, payload, created_at
		FROM auction_events
		WHERE auction_id=$1
		ORDER BY occurred_at ASC, created_at ASC
		LIMIT $2
	`, auctionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var entry JournalEntry
		var evType string
		var payload []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.AuctionID,
			&evType,
			&payload,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Type = models.EventType(evType)
		if err := json.Unmarshal(payload, &entry.Event); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
