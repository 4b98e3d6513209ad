package engine

import (
	"testing"
	"time"

	"brewctl/internal/models"
)

func TestAppendTempLog_SkipsDuplicateTruncatedValue(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var log []models.TempLogEntry

	log = appendTempLog(log, now, 66.9)
	log = appendTempLog(log, now.Add(time.Second), 66.1)

	if len(log) != 1 {
		t.Fatalf("got %d entries, want 1 (66.9 and 66.1 both truncate to 66)", len(log))
	}
	if log[0].Temp != 66 {
		t.Fatalf("got Temp=%d, want 66", log[0].Temp)
	}
}

func TestAppendTempLog_AppendsOnChange(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var log []models.TempLogEntry

	log = appendTempLog(log, now, 66.0)
	log = appendTempLog(log, now.Add(time.Second), 67.0)

	if len(log) != 2 {
		t.Fatalf("got %d entries, want 2", len(log))
	}
	if log[1].Temp != 67 {
		t.Fatalf("got Temp=%d, want 67", log[1].Temp)
	}
}

func TestAppendTempLog_CapsAtMaxEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	log := make([]models.TempLogEntry, tempLogMaxEntries)
	for i := range log {
		log[i] = models.TempLogEntry{Time: now, Temp: i}
	}

	log = appendTempLog(log, now.Add(time.Second), float64(tempLogMaxEntries))

	if len(log) != tempLogMaxEntries {
		t.Fatalf("got %d entries, want capped at %d", len(log), tempLogMaxEntries)
	}
	if log[0].Temp != 1 {
		t.Fatalf("got oldest surviving Temp=%d, want 1 (entry 0 dropped)", log[0].Temp)
	}
	if log[len(log)-1].Temp != tempLogMaxEntries {
		t.Fatalf("got newest Temp=%d, want %d", log[len(log)-1].Temp, tempLogMaxEntries)
	}
}

func TestLastTempLogEntry_EmptyLog(t *testing.T) {
	_, ok := lastTempLogEntry(nil)
	if ok {
		t.Fatalf("expected ok=false for an empty log")
	}
}

func TestLastTempLogEntry_ReturnsFinalElement(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	log := []models.TempLogEntry{
		{Time: now, Temp: 20},
		{Time: now.Add(time.Minute), Temp: 30},
	}

	entry, ok := lastTempLogEntry(log)
	if !ok || entry.Temp != 30 {
		t.Fatalf("got entry=%+v ok=%v, want Temp=30 ok=true", entry, ok)
	}
}

func TestTempLogSince_ReturnsOnlyEntriesAfterCursor(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	log := []models.TempLogEntry{
		{Time: now, Temp: 20},
		{Time: now.Add(time.Minute), Temp: 30},
		{Time: now.Add(2 * time.Minute), Temp: 40},
	}

	got := tempLogSince(log, now.Add(time.Minute))

	if len(got) != 1 || got[0].Temp != 40 {
		t.Fatalf("got %+v, want only the entry after the cursor", got)
	}
}

func TestTempLogSince_CursorAtOrAfterLastEntry_ReturnsNil(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	log := []models.TempLogEntry{
		{Time: now, Temp: 20},
	}

	if got := tempLogSince(log, now); got != nil {
		t.Fatalf("got %+v, want nil when cursor is not strictly before any entry", got)
	}
}
