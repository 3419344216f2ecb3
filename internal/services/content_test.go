package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pageview/pageview/internal/models"
	"github.com/pageview/pageview/internal/services"
	"github.com/pageview/pageview/pkg/scheduler"
)

var _ = Describe("PageContentService", func() {
	var (
		engine  *scheduler.Engine
		content *services.PageContentService
		thumbs  *services.ThumbnailService
		pages   []*fakePage
	)

	BeforeEach(func() {
		engine = scheduler.NewEngine(scheduler.WithMaxWorkers(4), scheduler.WithWorkerCount(3))
		categories := services.NewCategories()

		var err error
		content, err = services.NewPageContentService(engine, categories)
		Expect(err).NotTo(HaveOccurred())
		thumbs, err = services.NewThumbnailService(engine, categories)
		Expect(err).NotTo(HaveOccurred())

		pages = nil
		for i := range 4 {
			pages = append(pages, newFakePage(i))
		}
	})

	AfterEach(func() {
		for _, p := range pages {
			select {
			case <-p.release:
			default:
				close(p.release)
			}
		}
		Expect(content.Close()).To(Succeed())
		Expect(thumbs.Close()).To(Succeed())
		engine.Close()
	})

	It("should skip pages whose content is loaded", func() {
		// Given a page already loaded
		pages[0].content.Store(true)

		// When both pages are requested for view
		sources, err := content.RequestView([]models.Page{pages[0], pages[1]})

		// Then only the missing one is queued
		Expect(err).NotTo(HaveOccurred())
		Expect(sources).To(HaveLen(1))
		Expect(sources[0].Key()).To(BeIdenticalTo(pages[1]))
	})

	It("should wait for the requested pages", func() {
		// Given a view request
		_, err := content.RequestView([]models.Page{pages[0]})
		Expect(err).NotTo(HaveOccurred())

		// When the load is released
		done := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			done <- content.Wait(context.Background(), []models.Page{pages[0]}, 2*time.Second)
		}()
		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())
		close(pages[0].release)

		// Then the wait returns and the content is loaded
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		Expect(pages[0].IsContentLoaded()).To(BeTrue())
	})

	It("should time out a wait on a stuck page", func() {
		_, err := content.RequestAhead([]models.Page{pages[1]})
		Expect(err).NotTo(HaveOccurred())

		err = content.Wait(context.Background(), []models.Page{pages[1]}, 50*time.Millisecond)
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})

	It("should cancel the pages the reader moved away from", func() {
		// Given a view of page 0 that is running
		old, err := content.RequestView([]models.Page{pages[0]})
		Expect(err).NotTo(HaveOccurred())
		Eventually(pages[0].Loads, time.Second).Should(ContainElement("content"))

		// When the reader turns to page 1
		_, err = content.RequestView([]models.Page{pages[1]})
		Expect(err).NotTo(HaveOccurred())

		// Then page 0 is canceled and its job closes
		Expect(old[0].Canceled()).To(BeTrue())
		Eventually(old[0].Done(), time.Second).Should(BeClosed())
		Expect(pages[0].IsContentLoaded()).To(BeFalse())
	})

	It("should load thumbnails in the background without blocking content", func() {
		// Given thumbnails queued on the background worker
		_, err := thumbs.Request([]models.Page{pages[2], pages[3]})
		Expect(err).NotTo(HaveOccurred())
		Eventually(pages[2].Loads, time.Second).Should(ContainElement("thumbnail"))

		// When a page is viewed
		_, err = content.RequestView([]models.Page{pages[0]})
		Expect(err).NotTo(HaveOccurred())

		// Then a primary worker picks it up right away
		Eventually(pages[0].Loads, time.Second).Should(ContainElement("content"))
		Expect(pages[3].Loads()).To(BeEmpty())
	})

	It("should withdraw everything on Cancel", func() {
		sources, err := content.RequestAhead([]models.Page{pages[0], pages[1]})
		Expect(err).NotTo(HaveOccurred())

		Expect(content.Cancel()).To(Succeed())

		for _, src := range sources {
			Expect(src.Canceled()).To(BeTrue())
		}
	})
})
