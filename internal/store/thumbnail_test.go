package store_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/internal/store"
	"github.com/pageview/pageview/internal/store/migrations"
	srvErrors "github.com/pageview/pageview/pkg/errors"
)

var _ = Describe("ThumbnailStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	thumb := func(id string, width int) models.Thumbnail {
		return models.Thumbnail{
			PageID:    id,
			Data:      []byte{0x89, 'P', 'N', 'G', byte(width)},
			Width:     width,
			Height:    width / 2,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	Context("Get", func() {
		// Given an empty thumbnail store
		// When we ask for a page
		// Then it should return a not found error naming the page
		It("should return ThumbnailNotFoundError for an unknown page", func() {
			_, err := s.Thumbnails().Get(ctx, "001.png")

			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("001.png"))
		})

		It("should return a saved thumbnail", func() {
			// Arrange
			saved := thumb("001.png", 256)
			Expect(s.Thumbnails().Save(ctx, saved)).To(Succeed())

			// Act
			got, err := s.Thumbnails().Get(ctx, "001.png")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Data).To(Equal(saved.Data))
			Expect(got.Width).To(Equal(256))
			Expect(got.Height).To(Equal(128))
		})
	})

	Context("Save", func() {
		It("should replace the thumbnail of the same page", func() {
			Expect(s.Thumbnails().Save(ctx, thumb("001.png", 100))).To(Succeed())
			Expect(s.Thumbnails().Save(ctx, thumb("001.png", 200))).To(Succeed())

			got, err := s.Thumbnails().Get(ctx, "001.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Width).To(Equal(200))

			count, err := s.Thumbnails().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})
	})

	Context("Delete", func() {
		BeforeEach(func() {
			for _, id := range []string{"001.png", "002.png", "003.png"} {
				Expect(s.Thumbnails().Save(ctx, thumb(id, 64))).To(Succeed())
			}
		})

		It("should delete the given pages", func() {
			Expect(s.Thumbnails().Delete(ctx, "001.png", "003.png")).To(Succeed())

			count, err := s.Thumbnails().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
			_, err = s.Thumbnails().Get(ctx, "002.png")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should delete everything without arguments", func() {
			Expect(s.Thumbnails().Delete(ctx)).To(Succeed())

			count, err := s.Thumbnails().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})
})
