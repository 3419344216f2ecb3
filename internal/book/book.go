package book

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Book is the ordered list of pages found in a folder.
type Book struct {
	Folder string
	Pages  []*FilePage
}

// Open lists the image files of dir, sorted by name. Nothing is read yet.
func Open(dir string, cache ThumbnailCache) (*Book, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open book %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	b := &Book{Folder: dir, Pages: make([]*FilePage, 0, len(names))}
	for i, name := range names {
		b.Pages = append(b.Pages, NewFilePage(i, filepath.Join(dir, name), cache))
	}

	zap.S().Named("book").Infow("book opened", "folder", dir, "pages", len(b.Pages))
	return b, nil
}

func (b *Book) Len() int { return len(b.Pages) }

// Ahead returns up to n pages following index. A negative n means none.
func (b *Book) Ahead(index, n int) []*FilePage {
	if index < 0 || index >= len(b.Pages) {
		return nil
	}
	n = max(n, 0)
	end := min(index+1+n, len(b.Pages))
	return b.Pages[index+1 : end]
}
