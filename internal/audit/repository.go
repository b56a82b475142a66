package audit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devisflow/devisflow/internal/platform/db"
)

// Repository reads audit_logs.
type Repository interface {
	// Window returns up to limit rows after offset, newest first.
	Window(ctx context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Window(ctx context.Context, f TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT occurred_at, actor_id, action, entity, entity_id, meta
		FROM audit_logs
		WHERE actor_id = $1
			AND ($2::timestamptz IS NULL OR occurred_at >= $2)
			AND ($3::timestamptz IS NULL OR occurred_at < $3)
			AND ($4::text IS NULL OR entity = $4)
			AND ($5::text IS NULL OR entity_id = $5)
			AND ($6::text IS NULL OR action = $6)
		ORDER BY occurred_at DESC, id DESC
		OFFSET $7 LIMIT $8
	`, f.ActorID, toPgTime(f), toPgUntil(f), optionalText(f.Entity), optionalText(f.EntityID), optionalText(f.Action), offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TimelineRow{}
	for rows.Next() {
		var (
			row  TimelineRow
			at   pgtype.Timestamptz
			meta []byte
		)
		if err := rows.Scan(&at, &row.Actor, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, err
		}
		if at.Valid {
			row.At = at.Time.UTC()
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &row.Meta); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func toPgTime(f TimelineFilters) pgtype.Timestamptz {
	if f.From.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: f.From, Valid: true}
}

func toPgUntil(f TimelineFilters) pgtype.Timestamptz {
	if f.To.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: f.To, Valid: true}
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}
