package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"brewctl/internal/models"
)

// LogFilter supports event-history filtering by time range and type
// (SPEC_FULL §7).
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	return from, to, normalizeEventType(f.Type), nil
}

// ListEvents returns the persisted event trail matching f, normalizing
// and validating the filter before delegating to the store.
func (c *Core) ListEvents(ctx context.Context, f LogFilter) ([]models.Event, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	if c.store == nil || c.store.Events == nil {
		return nil, nil
	}
	return c.store.Events.List(ctx, from, to, typ)
}

// recordEvent persists a single state-transition event. Errors are
// logged, not surfaced, since the caller is a background tick loop
// with nothing to report a failure to.
func (c *Core) recordEvent(ev models.Event) {
	if c.store == nil || c.store.Events == nil {
		return
	}
	if err := c.store.Events.Append(context.Background(), ev); err != nil {
		if c.log != nil {
			c.log.Errorw("event append failed", "type", ev.Type, "err", err)
		}
	}
}
