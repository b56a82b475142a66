package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/devisflow/devisflow/internal/platform/db"
)

// Audited actions on quotes.
const (
	ActionQuoteCreated = "quote.created"
	ActionQuoteUpdated = "quote.updated"
	ActionQuoteShared  = "quote.shared"
	ActionQuoteSigned  = "quote.signed"
)

// EntityQuote names quotes in audit_logs.entity.
const EntityQuote = "quote"

// AuditLog is one row of audit_logs.
type AuditLog struct {
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

func (l AuditLog) validate() error {
	switch {
	case l.ActorID == "":
		return errors.New("audit: actor required")
	case l.Action == "" || l.Entity == "" || l.EntityID == "":
		return errors.New("audit: action, entity and entity id required")
	}
	return nil
}

// RecordAudit inserts log through q. Pass the transaction of the mutation
// being described so both commit together. A zero At lets the database stamp
// the row.
func RecordAudit(ctx context.Context, q db.DBTX, log AuditLog) error {
	if q == nil {
		return errors.New("audit: no database handle")
	}
	if err := log.validate(); err != nil {
		return err
	}
	meta := log.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("audit: encode meta: %w", err)
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err = q.Exec(ctx, `
		INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	`, log.ActorID, log.Action, log.Entity, log.EntityID, raw, at)
	return err
}
