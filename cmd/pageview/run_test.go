package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pageview/pageview/internal/config"
)

var _ = Describe("run", func() {
	var (
		ctx context.Context
		dir string
		cfg *config.Configuration
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		cfg = config.NewConfigurationWithOptionsAndDefaults(
			config.WithEngine(*config.NewEngineWithOptionsAndDefaults(
				config.WithWaitTimeout(5 * time.Second),
			)),
		)
	})

	It("should load the requested pages and every thumbnail", func() {
		// Given a book of three pages
		for i := range 3 {
			f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%03d.png", i)))
			Expect(err).NotTo(HaveOccurred())
			Expect(png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 48)))).To(Succeed())
			Expect(f.Close()).To(Succeed())
		}

		// When the first page is viewed with one page ahead
		a, err := newApp(ctx, cfg, dir)
		Expect(err).NotTo(HaveOccurred())
		defer a.close()

		view := toPages(a.book.Pages[:1])
		next := toPages(a.book.Ahead(0, 1))
		_, err = a.content.RequestView(view)
		Expect(err).NotTo(HaveOccurred())
		_, err = a.content.RequestAhead(next)
		Expect(err).NotTo(HaveOccurred())
		_, err = a.thumbnails.Request(a.pages())
		Expect(err).NotTo(HaveOccurred())

		// Then the first two pages are loaded and every thumbnail exists
		Expect(a.content.Wait(ctx, append(view, next...), cfg.Engine.WaitTimeout)).To(Succeed())
		Expect(a.thumbnails.Wait(ctx, a.pages(), cfg.Engine.WaitTimeout)).To(Succeed())

		Expect(a.book.Pages[0].IsContentLoaded()).To(BeTrue())
		Expect(a.book.Pages[1].IsContentLoaded()).To(BeTrue())
		Expect(a.book.Pages[2].IsContentLoaded()).To(BeFalse())
		for _, p := range a.book.Pages {
			Expect(p.IsThumbnailValid()).To(BeTrue())
		}

		n, err := a.store.Thumbnails().Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
	})

	It("should succeed on an empty folder", func() {
		Expect(runBook(ctx, cfg, dir, 0, 4)).To(Succeed())
	})

	It("should fail on a missing folder", func() {
		Expect(runBook(ctx, cfg, filepath.Join(dir, "missing"), 0, 4)).NotTo(Succeed())
	})

	It("should return a startup error instead of panicking", func() {
		var (
			a   *app
			err error
		)
		Expect(func() { a, err = newApp(ctx, cfg, filepath.Join(dir, "missing")) }).NotTo(Panic())
		Expect(err).To(HaveOccurred())
		Expect(a).To(BeNil())
	})

	It("should ignore a negative look-ahead", func() {
		f, err := os.Create(filepath.Join(dir, "000.png"))
		Expect(err).NotTo(HaveOccurred())
		Expect(png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8)))).To(Succeed())
		Expect(f.Close()).To(Succeed())

		Expect(runBook(ctx, cfg, dir, 0, -5)).To(Succeed())
	})
})
