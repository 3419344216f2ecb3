package store_test

import (
	"context"
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/internal/store"
	"github.com/pageview/pageview/internal/store/migrations"
	srvErrors "github.com/pageview/pageview/pkg/errors"
)

var _ = Describe("PreferencesStore", func() {
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

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Get", func() {
		// Given an empty preferences store
		// When we try to get the preferences
		// Then it should return a not found error
		It("should return PreferencesNotFoundError when nothing was saved", func() {
			// Act
			_, err := s.Preferences().Get(ctx)

			// Assert
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		// Given saved preferences
		// When we retrieve them
		// Then it should return the saved worker count
		It("should return saved preferences", func() {
			// Arrange
			err := s.Preferences().Save(ctx, &models.Preferences{WorkerCount: 3})
			Expect(err).NotTo(HaveOccurred())

			// Act
			prefs, err := s.Preferences().Get(ctx)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(prefs.WorkerCount).To(Equal(3))
			Expect(prefs.UpdatedAt).NotTo(BeZero())
		})
	})

	Context("Save", func() {
		// Given existing preferences
		// When we save new ones
		// Then the single row should be updated
		It("should update existing preferences", func() {
			// Arrange
			Expect(s.Preferences().Save(ctx, &models.Preferences{WorkerCount: 1})).To(Succeed())

			// Act
			err := s.Preferences().Save(ctx, &models.Preferences{WorkerCount: 4})
			Expect(err).NotTo(HaveOccurred())

			// Assert
			prefs, err := s.Preferences().Get(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(prefs.WorkerCount).To(Equal(4))

			var count int
			Expect(db.QueryRowContext(ctx, "SELECT COUNT(*) FROM preferences").Scan(&count)).To(Succeed())
			Expect(count).To(Equal(1))
		})
	})
})
