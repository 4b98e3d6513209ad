package store

import "database/sql"

// Store aggregates the settings key/value store and the auth
// repository behind their concrete SQLite-backed implementations,
// mirroring the teacher's internal/repository.Repository aggregator.
type Store struct {
	Settings *SettingsStore
	Auth     *AuthRepository
	Events   *EventRepository
}

func New(db *sql.DB) *Store {
	return &Store{
		Settings: NewSettingsStore(db),
		Auth:     NewAuthRepository(db),
		Events:   NewEventRepository(db),
	}
}
