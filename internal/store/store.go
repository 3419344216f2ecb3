package store

import "database/sql"

// Store provides access to all storage repositories.
type Store struct {
	db          *sql.DB
	preferences *PreferencesStore
	thumbnails  *ThumbnailStore
}

func NewStore(db *sql.DB) *Store {
	qi := newLoggingInterceptor(db)
	return &Store{
		db:          db,
		preferences: NewPreferencesStore(qi),
		thumbnails:  NewThumbnailStore(qi),
	}
}

func (s *Store) Preferences() *PreferencesStore {
	return s.preferences
}

func (s *Store) Thumbnails() *ThumbnailStore {
	return s.thumbnails
}

func (s *Store) Close() error {
	return s.db.Close()
}
