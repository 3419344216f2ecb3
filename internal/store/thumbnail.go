package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/pageview/pageview/internal/models"
	srvErrors "github.com/pageview/pageview/pkg/errors"
)

const thumbnailsTable = "thumbnails"

// ThumbnailStore caches rendered thumbnails by page id.
type ThumbnailStore struct {
	db QueryInterceptor
}

func NewThumbnailStore(db QueryInterceptor) *ThumbnailStore {
	return &ThumbnailStore{db: db}
}

func (s *ThumbnailStore) Get(ctx context.Context, pageID string) (*models.Thumbnail, error) {
	query, args, err := sq.Select("page_id", "data", "width", "height", "created_at").
		From(thumbnailsTable).
		Where(sq.Eq{"page_id": pageID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var t models.Thumbnail
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&t.PageID, &t.Data, &t.Width, &t.Height, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewThumbnailNotFoundError(pageID)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Save stores the thumbnail, replacing any previous one of the page.
func (s *ThumbnailStore) Save(ctx context.Context, t models.Thumbnail) error {
	query, args, err := sq.Insert(thumbnailsTable).
		Columns("page_id", "data", "width", "height", "created_at").
		Values(t.PageID, t.Data, t.Width, t.Height, t.CreatedAt).
		Suffix(`ON CONFLICT (page_id) DO UPDATE SET
			data = EXCLUDED.data,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			created_at = EXCLUDED.created_at`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *ThumbnailStore) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(thumbnailsTable).ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// Delete removes the thumbnails of the given pages, or all of them when
// none is given.
func (s *ThumbnailStore) Delete(ctx context.Context, pageIDs ...string) error {
	builder := sq.Delete(thumbnailsTable)
	if len(pageIDs) > 0 {
		builder = builder.Where(sq.Eq{"page_id": pageIDs})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}
