package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pageview/pageview/internal/models"
	srvErrors "github.com/pageview/pageview/pkg/errors"
)

// PreferencesStore keeps the single row of user preferences.
type PreferencesStore struct {
	db QueryInterceptor
}

func NewPreferencesStore(db QueryInterceptor) *PreferencesStore {
	return &PreferencesStore{db: db}
}

// Get retrieves the stored preferences.
func (s *PreferencesStore) Get(ctx context.Context) (*models.Preferences, error) {
	var prefs models.Preferences
	err := s.db.QueryRowContext(ctx, queryGetPreferences).Scan(&prefs.WorkerCount, &prefs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewPreferencesNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Save stores or updates the preferences.
func (s *PreferencesStore) Save(ctx context.Context, prefs *models.Preferences) error {
	_, err := s.db.ExecContext(ctx, queryUpsertPreferences, prefs.WorkerCount)
	return err
}
