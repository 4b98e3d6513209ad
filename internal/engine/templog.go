package engine

import (
	"math"
	"time"

	"brewctl/internal/models"
)

const tempLogMaxEntries = 10_000

// appendTempLog appends (now, int-truncated avg) to the log only if it
// differs from the last stored value (SPEC_FULL §4.1). Called every
// 5th sensor-read cycle while controlRun is set.
func appendTempLog(log []models.TempLogEntry, now time.Time, avg float64) []models.TempLogEntry {
	truncated := int(math.Trunc(avg))
	if n := len(log); n > 0 && log[n-1].Temp == truncated {
		return log
	}
	log = append(log, models.TempLogEntry{Time: now, Temp: truncated})
	if len(log) > tempLogMaxEntries {
		log = log[len(log)-tempLogMaxEntries:]
	}
	return log
}

// lastTempLogEntry returns the most recent entry, reading the last
// real element of the slice directly. SPEC_FULL's Open Question #2
// calls out a variant that dereferences a reverse-iterator one past
// the end; there is no iterator to misuse here, so this always
// returns the true last entry.
func lastTempLogEntry(log []models.TempLogEntry) (models.TempLogEntry, bool) {
	if len(log) == 0 {
		return models.TempLogEntry{}, false
	}
	return log[len(log)-1], true
}

// tempLogSince returns every entry with Time strictly after cursor, for
// the Data command's incremental read (SPEC_FULL §4.7/§6.2).
func tempLogSince(log []models.TempLogEntry, cursor time.Time) []models.TempLogEntry {
	for i, e := range log {
		if e.Time.After(cursor) {
			return log[i:]
		}
	}
	return nil
}
