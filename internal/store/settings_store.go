package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sigurn/crc16"
)

// ErrCorrupt is returned when a stored value's CRC does not match its
// bytes, surfacing truncated or torn writes as a typed error instead
// of a panic deep in a decode.
var ErrCorrupt = errors.New("store: value failed crc check")

var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

const (
	kindU8     = "u8"
	kindU16    = "u16"
	kindBool   = "bool"
	kindString = "string"
	kindBlob   = "blob"
)

// SettingsStore is the key/value contract in SPEC_FULL §6.1: short
// string keys, primitive or blob values, each blob CRC-checked on
// read.
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) put(ctx context.Context, key, kind string, value []byte) error {
	crc := crc16.Checksum(value, crcTable)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, kind, value, crc) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET kind=excluded.kind, value=excluded.value, crc=excluded.crc
	`, key, kind, value, crc)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) get(ctx context.Context, key string) (kind string, value []byte, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT kind, value, crc FROM settings WHERE key = ?`, key)
	var storedCRC uint16
	if err := row.Scan(&kind, &value, &storedCRC); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, false, nil
		}
		return "", nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	if crc16.Checksum(value, crcTable) != storedCRC {
		return "", nil, false, fmt.Errorf("get %q: %w", key, ErrCorrupt)
	}
	return kind, value, true, nil
}

func (s *SettingsStore) SetUint8(ctx context.Context, key string, v uint8) error {
	return s.put(ctx, key, kindU8, []byte{v})
}

func (s *SettingsStore) GetUint8(ctx context.Context, key string) (uint8, bool, error) {
	_, value, ok, err := s.get(ctx, key)
	if err != nil || !ok || len(value) < 1 {
		return 0, ok, err
	}
	return value[0], true, nil
}

func (s *SettingsStore) SetUint16(ctx context.Context, key string, v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return s.put(ctx, key, kindU16, buf)
}

func (s *SettingsStore) GetUint16(ctx context.Context, key string) (uint16, bool, error) {
	_, value, ok, err := s.get(ctx, key)
	if err != nil || !ok || len(value) < 2 {
		return 0, ok, err
	}
	return binary.LittleEndian.Uint16(value), true, nil
}

func (s *SettingsStore) SetBool(ctx context.Context, key string, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	return s.put(ctx, key, kindBool, []byte{b})
}

func (s *SettingsStore) GetBool(ctx context.Context, key string) (bool, bool, error) {
	_, value, ok, err := s.get(ctx, key)
	if err != nil || !ok || len(value) < 1 {
		return false, ok, err
	}
	return value[0] != 0, true, nil
}

func (s *SettingsStore) SetString(ctx context.Context, key, v string) error {
	return s.put(ctx, key, kindString, []byte(v))
}

func (s *SettingsStore) GetString(ctx context.Context, key string) (string, bool, error) {
	_, value, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(value), true, nil
}

func (s *SettingsStore) SetBlob(ctx context.Context, key string, v []byte) error {
	return s.put(ctx, key, kindBlob, v)
}

func (s *SettingsStore) GetBlob(ctx context.Context, key string) ([]byte, bool, error) {
	_, value, ok, err := s.get(ctx, key)
	return value, ok, err
}
