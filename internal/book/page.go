package book

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/internal/util"
	srvErrors "github.com/pageview/pageview/pkg/errors"
)

const (
	ThumbnailSize = 256

	readChunkSize = 64 * 1024
	readMaxTries  = 3
)

// ThumbnailCache persists thumbnails across runs. Get returns a
// ResourceNotFoundError for an unknown page.
type ThumbnailCache interface {
	Get(ctx context.Context, pageID string) (*models.Thumbnail, error)
	Save(ctx context.Context, thumbnail models.Thumbnail) error
}

// FilePage is a page backed by an image file.
type FilePage struct {
	id    string
	index int
	path  string
	cache ThumbnailCache

	// serializes loads of the same page from different categories
	mu        sync.Mutex
	content   atomic.Pointer[models.Content]
	thumbnail atomic.Pointer[models.Thumbnail]
}

func NewFilePage(index int, path string, cache ThumbnailCache) *FilePage {
	return &FilePage{
		id:    filepath.Base(path),
		index: index,
		path:  path,
		cache: cache,
	}
}

func (p *FilePage) ID() string { return p.id }

func (p *FilePage) Index() int { return p.index }

func (p *FilePage) Path() string { return p.path }

func (p *FilePage) String() string {
	return fmt.Sprintf("%d:%s", p.index, p.id)
}

func (p *FilePage) IsContentLoaded() bool { return p.content.Load() != nil }

// Content returns the loaded content or nil.
func (p *FilePage) Content() *models.Content { return p.content.Load() }

func (p *FilePage) IsThumbnailValid() bool { return p.thumbnail.Load() != nil }

// Thumbnail returns the loaded thumbnail or nil.
func (p *FilePage) Thumbnail() *models.Thumbnail { return p.thumbnail.Load() }

// LoadContent reads the file and decodes its header.
func (p *FilePage) LoadContent(ctx context.Context) error {
	if p.IsContentLoaded() {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.IsContentLoaded() {
		return nil
	}

	c, err := p.readContent(ctx)
	if err != nil {
		return err
	}
	p.content.Store(c)

	zap.S().Named("book").Debugw("content loaded", "page", p.id, "format", c.Format, "width", c.Width, "height", c.Height)
	return nil
}

// readContent reads and decodes the file without keeping the result.
func (p *FilePage) readContent(ctx context.Context) (*models.Content, error) {
	data, err := backoff.Retry(ctx, func() ([]byte, error) {
		data, err := readFile(ctx, p.path)
		if err != nil && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || ctx.Err() != nil) {
			return nil, backoff.Permanent(err)
		}
		return data, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(readMaxTries))
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", p.id, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", p.id, err)
	}

	return &models.Content{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   int64(len(data)),
		Data:   data,
	}, nil
}

// LoadThumbnail takes the thumbnail from the cache or renders it from the
// page content, then saves it to the cache.
func (p *FilePage) LoadThumbnail(ctx context.Context) error {
	if p.IsThumbnailValid() {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.IsThumbnailValid() {
		return nil
	}

	if p.cache != nil {
		thumb, err := p.cache.Get(ctx, p.id)
		switch {
		case err == nil:
			p.thumbnail.Store(thumb)
			return nil
		case !srvErrors.IsResourceNotFoundError(err):
			zap.S().Named("book").Warnw("failed to read thumbnail cache", "page", p.id, "error", err)
		}
	}

	// a thumbnail never makes the page content resident
	c := p.content.Load()
	if c == nil {
		var err error
		if c, err = p.readContent(ctx); err != nil {
			return err
		}
	}

	thumb, err := render(ctx, p.id, c.Data)
	if err != nil {
		return err
	}
	p.thumbnail.Store(thumb)

	if p.cache != nil {
		if err := p.cache.Save(ctx, *thumb); err != nil {
			zap.S().Named("book").Warnw("failed to save thumbnail", "page", p.id, "error", err)
		}
	}
	return nil
}

func render(ctx context.Context, pageID string, data []byte) (*models.Thumbnail, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", pageID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := util.FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), ThumbnailSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail %s: %w", pageID, err)
	}

	return &models.Thumbnail{
		PageID:    pageID,
		Data:      buf.Bytes(),
		Width:     w,
		Height:    h,
		CreatedAt: time.Now(),
	}, nil
}

// readFile reads path in chunks, checking ctx between chunks.
func readFile(ctx context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if st, err := f.Stat(); err == nil {
		buf.Grow(int(st.Size()))
	}

	chunk := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := f.Read(chunk)
		buf.Write(chunk[:n])
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}
