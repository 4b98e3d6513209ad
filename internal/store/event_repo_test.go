package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"brewctl/internal/models"
)

func eventCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMockEventRepo(t *testing.T) (*EventRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewEventRepository(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestEventRepository_Append_GeneratesIDAndUppercasesType(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO events (id, occurred_at, type, message, actor, meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "BOOST_ON", "boost engaged", "brewer1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(eventCtx(t), models.Event{
		Type:        "  boost_on ",
		Description: "boost engaged",
		Actor:       "brewer1",
		Metadata:    map[string]any{"a": 1},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestEventRepository_Append_DBError(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO events").WillReturnError(errors.New("down"))

	err := repo.Append(eventCtx(t), models.Event{Type: "run_stop", Description: "run stopped"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error containing 'down', got %v", err)
	}
}

func TestEventRepository_List_NoFilters_ParsesMetadata(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"a": "b"})

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "actor", "meta"}).
		AddRow("1", now, "RUN_START", "run started", "brewer1", string(js)).
		AddRow("2", now.Add(time.Hour), "RUN_STOP", "run stopped", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, occurred_at, type, message, actor, meta FROM events ORDER BY occurred_at ASC`)).
		WillReturnRows(rows)

	got, err := repo.List(eventCtx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].EventID != "1" || got[1].EventID != "2" {
		t.Fatalf("unexpected ids: %v, %v", got[0].EventID, got[1].EventID)
	}
	if got[0].Actor != "brewer1" || got[1].Actor != "" {
		t.Fatalf("unexpected actors: %q, %q", got[0].Actor, got[1].Actor)
	}
	b1, _ := json.Marshal(got[0].Metadata)
	if string(b1) != string(js) {
		t.Fatalf("metadata mismatch: %s vs %s", string(b1), string(js))
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil metadata, got %#v", got[1].Metadata)
	}
}

func TestEventRepository_List_WithFilters_BuildsWhereClause(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := `SELECT id, occurred_at, type, message, actor, meta FROM events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "actor", "meta"}).
		AddRow("2", from, "BOOST_OFF", "boost disengaged", nil, nil).
		AddRow("3", to, "BOOST_OFF", "boost disengaged", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(from.UTC(), to.UTC(), "BOOST_OFF").
		WillReturnRows(rows)

	got, err := repo.List(eventCtx(t), from, to, " boost_off ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "2" || got[1].EventID != "3" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestEventRepository_List_ScanError(t *testing.T) {
	repo, mock, cleanup := newMockEventRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "actor", "meta"}).
		AddRow("x", 123, "RUN_START", "msg", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, occurred_at, type, message, actor, meta FROM events ORDER BY occurred_at ASC`)).
		WillReturnRows(rows)

	_, err := repo.List(eventCtx(t), time.Time{}, time.Time{}, "")
	if err == nil {
		t.Fatalf("expected scan error, got nil")
	}
}
