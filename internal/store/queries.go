package store

// Preferences queries
const (
	queryGetPreferences = `
		SELECT worker_count, updated_at
		FROM preferences WHERE id = 1`

	queryUpsertPreferences = `
		INSERT INTO preferences (id, worker_count, updated_at)
		VALUES (1, ?, now())
		ON CONFLICT (id) DO UPDATE SET
			worker_count = EXCLUDED.worker_count,
			updated_at = now()`
)
