package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sigurn/crc16"
)

func newMockSettingsStore(t *testing.T) (*SettingsStore, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	s := NewSettingsStore(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return s, mock, cleanup
}

func TestSettingsStore_SetUint16_PersistsKindAndCRC(t *testing.T) {
	s, mock, cleanup := newMockSettingsStore(t)
	defer cleanup()

	want := []byte{0x05, 0x00}
	wantCRC := crc16.Checksum(want, crcTable)

	mock.ExpectExec("INSERT INTO settings").
		WithArgs("pidLoopTime", kindU16, want, wantCRC).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.SetUint16(context.Background(), "pidLoopTime", 5); err != nil {
		t.Fatalf("SetUint16: %v", err)
	}
}

func TestSettingsStore_GetUint16_RoundTrips(t *testing.T) {
	s, mock, cleanup := newMockSettingsStore(t)
	defer cleanup()

	value := []byte{0x05, 0x00}
	crc := crc16.Checksum(value, crcTable)
	rows := sqlmock.NewRows([]string{"kind", "value", "crc"}).AddRow(kindU16, value, crc)
	mock.ExpectQuery("SELECT kind, value, crc FROM settings").
		WithArgs("pidLoopTime").
		WillReturnRows(rows)

	got, ok, err := s.GetUint16(context.Background(), "pidLoopTime")
	if err != nil {
		t.Fatalf("GetUint16: %v", err)
	}
	if !ok || got != 5 {
		t.Fatalf("got (%d, %v), want (5, true)", got, ok)
	}
}

func TestSettingsStore_GetUint16_MissingKeyReturnsNotOK(t *testing.T) {
	s, mock, cleanup := newMockSettingsStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT kind, value, crc FROM settings").
		WithArgs("pidLoopTime").
		WillReturnError(sql.ErrNoRows)

	_, ok, err := s.GetUint16(context.Background(), "pidLoopTime")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a never-saved key")
	}
}

func TestSettingsStore_GetUint16_CorruptValueReturnsErrCorrupt(t *testing.T) {
	s, mock, cleanup := newMockSettingsStore(t)
	defer cleanup()

	value := []byte{0x05, 0x00}
	rows := sqlmock.NewRows([]string{"kind", "value", "crc"}).AddRow(kindU16, value, uint16(0xBEEF))
	mock.ExpectQuery("SELECT kind, value, crc FROM settings").
		WithArgs("pidLoopTime").
		WillReturnRows(rows)

	_, _, err := s.GetUint16(context.Background(), "pidLoopTime")
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got err=%v, want ErrCorrupt", err)
	}
}

func TestSettingsStore_SetBool_EncodesAsSingleByte(t *testing.T) {
	s, mock, cleanup := newMockSettingsStore(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO settings").
		WithArgs("invertOutputs", kindBool, []byte{1}, crc16.Checksum([]byte{1}, crcTable)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.SetBool(context.Background(), "invertOutputs", true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
}

func TestSettingsStore_GetString_RoundTrips(t *testing.T) {
	s, mock, cleanup := newMockSettingsStore(t)
	defer cleanup()

	value := []byte("tcp://broker:1883")
	crc := crc16.Checksum(value, crcTable)
	rows := sqlmock.NewRows([]string{"kind", "value", "crc"}).AddRow(kindString, value, crc)
	mock.ExpectQuery("SELECT kind, value, crc FROM settings").
		WithArgs("mqttUri").
		WillReturnRows(rows)

	got, ok, err := s.GetString(context.Background(), "mqttUri")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if !ok || got != "tcp://broker:1883" {
		t.Fatalf("got (%q, %v), want (%q, true)", got, ok, "tcp://broker:1883")
	}
}
