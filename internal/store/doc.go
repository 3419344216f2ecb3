// Package store implements the data access layer for pageview.
//
// This package provides persistent storage using DuckDB for the two things
// that outlive a session: the user preferences and the thumbnail cache.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│       PreferencesStore         │        ThumbnailStore          │
//	│              ▼                 │             ▼                  │
//	│         preferences            │         thumbnails             │
//	├────────────────────────────────┴────────────────────────────────┤
//	│                  QueryInterceptor (zap debug)                   │
//	│                             ▼                                   │
//	│                          *sql.DB                                │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Tables created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  preferences       │  Worker count chosen by the user            │
//	│  thumbnails        │  PNG thumbnails keyed by page id            │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # PreferencesStore
//
// Schema:
//
//	preferences (
//	    id INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
//	    worker_count INTEGER NOT NULL,
//	    updated_at TIMESTAMP
//	)
//
// Methods:
//   - Get(ctx) → *models.Preferences, ResourceNotFoundError when empty
//   - Save(ctx, prefs) → error (uses UPSERT)
//
// # ThumbnailStore
//
// Queries are built with squirrel.
//
// Schema:
//
//	thumbnails (
//	    page_id VARCHAR PRIMARY KEY,
//	    data BLOB NOT NULL,
//	    width INTEGER, height INTEGER,
//	    created_at TIMESTAMP
//	)
//
// Methods:
//   - Get(ctx, pageID) → *models.Thumbnail, ResourceNotFoundError when missing
//   - Save(ctx, thumbnail) → error (uses UPSERT)
//   - Count(ctx) → int
//   - Delete(ctx, pageIDs...) → error, no ids deletes everything
//
// # QueryInterceptor
//
// All database operations are wrapped with a QueryInterceptor that provides
// debug logging for all queries.
//
// Logged operations:
//   - QueryRowContext
//   - QueryContext
//   - ExecContext
package store
