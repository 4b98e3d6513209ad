package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"brewctl/internal/models"
)

// EventRepository is the persisted, queryable event trail (SPEC_FULL
// §7), kept close to the teacher's internal/repository/event_repo.go.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const timestampLayout = "2006-01-02 15:04:05"

// Append inserts a new event. If EventID or OccurredAt are unset, they
// are filled in.
func (r *EventRepository) Append(ctx context.Context, e models.Event) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	var actorPtr *string
	if a := strings.TrimSpace(e.Actor); a != "" {
		actorPtr = &a
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, occurred_at, type, message, actor, meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt.Format(timestampLayout),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		actorPtr,
		metaPtr,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or type,
// ordered oldest first.
func (r *EventRepository) List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, occurred_at, type, message, actor, meta FROM events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Event, 0, 64)
	for rows.Next() {
		var ev models.Event
		var actorStr sql.NullString
		var metaStr sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &actorStr, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.Actor = actorStr.String

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
