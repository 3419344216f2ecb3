package scheduler_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/pageview/pageview/pkg/errors"
	"github.com/pageview/pageview/pkg/scheduler"
)

type testOwner struct {
	id    uuid.UUID
	name  string
	class scheduler.Class
}

func newOwner(name string, class scheduler.Class) *testOwner {
	return &testOwner{id: uuid.New(), name: name, class: class}
}

func (o *testOwner) ID() uuid.UUID          { return o.id }
func (o *testOwner) Name() string           { return o.name }
func (o *testOwner) Class() scheduler.Class { return o.class }

func noop(string) (scheduler.Command, error) {
	return scheduler.CommandFunc(func(context.Context) error { return nil }), nil
}

func orders(c *scheduler.Category[string], keys ...string) []scheduler.Order {
	out := make([]scheduler.Order, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.Order(k))
	}
	return out
}

func keysOf(infos []scheduler.SourceInfo) []string {
	keys := make([]string, 0, len(infos))
	for _, i := range infos {
		keys = append(keys, i.Key)
	}
	return keys
}

var _ = Describe("Scheduler", func() {
	var (
		s     *scheduler.Scheduler
		view  *scheduler.Category[string]
		ahead *scheduler.Category[string]
		thumb *scheduler.Category[string]
	)

	BeforeEach(func() {
		s = scheduler.NewScheduler()
		view = scheduler.NewCategory("page-view", 10, noop)
		ahead = scheduler.NewCategory("page-ahead", 8, noop)
		thumb = scheduler.NewCategory("thumbnail", 5, noop)
	})

	AfterEach(func() {
		s.Close()
	})

	Describe("Submit", func() {
		It("should order the queue by category priority", func() {
			// Given clients registered in ascending priority order
			t := newOwner("thumb", thumb)
			a := newOwner("ahead", ahead)
			v := newOwner("view", view)
			for _, o := range []*testOwner{t, a, v} {
				Expect(s.RegisterClient(o)).To(Succeed())
			}

			// When each submits its keys
			_, err := s.Submit(t, orders(thumb, "t1", "t2"))
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Submit(a, orders(ahead, "a1"))
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Submit(v, orders(view, "v1", "v2"))
			Expect(err).NotTo(HaveOccurred())

			// Then the queue is priority first, submission order second
			Expect(keysOf(s.Snapshot())).To(Equal([]string{"v1", "v2", "a1", "t1", "t2"}))
		})

		It("should break priority ties by registration order", func() {
			first := newOwner("first", view)
			second := newOwner("second", view)
			Expect(s.RegisterClient(first)).To(Succeed())
			Expect(s.RegisterClient(second)).To(Succeed())

			_, err := s.Submit(second, orders(view, "b"))
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Submit(first, orders(view, "a"))
			Expect(err).NotTo(HaveOccurred())

			Expect(keysOf(s.Snapshot())).To(Equal([]string{"a", "b"}))
		})

		It("should reuse a queued source with the same category and key", func() {
			// Given two clients of the same category
			c1 := newOwner("c1", view)
			c2 := newOwner("c2", view)
			Expect(s.RegisterClient(c1)).To(Succeed())
			Expect(s.RegisterClient(c2)).To(Succeed())

			// When both order the same key
			src1, err := s.Submit(c1, orders(view, "p1"))
			Expect(err).NotTo(HaveOccurred())
			src2, err := s.Submit(c2, orders(view, "p1"))
			Expect(err).NotTo(HaveOccurred())

			// Then the source is shared and queued once
			Expect(src2[0]).To(BeIdenticalTo(src1[0]))
			Expect(s.Len()).To(Equal(1))
		})

		It("should not share sources across categories", func() {
			v := newOwner("view", view)
			t := newOwner("thumb", thumb)
			Expect(s.RegisterClient(v)).To(Succeed())
			Expect(s.RegisterClient(t)).To(Succeed())

			src1, _ := s.Submit(v, orders(view, "p1"))
			src2, _ := s.Submit(t, orders(thumb, "p1"))

			Expect(src2[0]).NotTo(BeIdenticalTo(src1[0]))
			Expect(s.Len()).To(Equal(2))
		})

		It("should drop duplicate keys within one submission", func() {
			v := newOwner("view", view)
			Expect(s.RegisterClient(v)).To(Succeed())

			sources, err := s.Submit(v, orders(view, "p1", "p2", "p1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(sources).To(HaveLen(2))
			Expect(keysOf(s.Snapshot())).To(Equal([]string{"p1", "p2"}))
		})

		It("should cancel sources that are no longer ordered", func() {
			// Given a client with two queued keys
			v := newOwner("view", view)
			Expect(s.RegisterClient(v)).To(Succeed())
			old, err := s.Submit(v, orders(view, "p1", "p2"))
			Expect(err).NotTo(HaveOccurred())

			// When it replaces its order
			next, err := s.Submit(v, orders(view, "p2", "p3"))
			Expect(err).NotTo(HaveOccurred())

			// Then the dropped key is canceled and the kept one reused
			Expect(old[0].Canceled()).To(BeTrue())
			Expect(old[1].Canceled()).To(BeFalse())
			Expect(next[0]).To(BeIdenticalTo(old[1]))
			Expect(keysOf(s.Snapshot())).To(Equal([]string{"p2", "p3"}))
		})

		It("should keep a source another client still references", func() {
			c1 := newOwner("c1", view)
			c2 := newOwner("c2", view)
			Expect(s.RegisterClient(c1)).To(Succeed())
			Expect(s.RegisterClient(c2)).To(Succeed())

			shared, _ := s.Submit(c1, orders(view, "p1"))
			_, _ = s.Submit(c2, orders(view, "p1"))
			_, err := s.Submit(c1, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(shared[0].Canceled()).To(BeFalse())
			Expect(s.Len()).To(Equal(1))
		})

		It("should reject an unregistered client", func() {
			_, err := s.Submit(newOwner("ghost", view), orders(view, "p1"))
			Expect(srvErrors.IsInvalidOperationError(err)).To(BeTrue())
		})

		It("should reject orders of another category without touching the queue", func() {
			v := newOwner("view", view)
			Expect(s.RegisterClient(v)).To(Succeed())
			_, err := s.Submit(v, orders(view, "p1"))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Submit(v, orders(thumb, "p2"))
			Expect(srvErrors.IsInvalidOperationError(err)).To(BeTrue())
			Expect(keysOf(s.Snapshot())).To(Equal([]string{"p1"}))
		})

		It("should broadcast even when nothing changed", func() {
			v := newOwner("view", view)
			Expect(s.RegisterClient(v)).To(Succeed())

			_, changed, err := s.Acquire(0, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).NotTo(BeClosed())

			_, err = s.Submit(v, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeClosed())
		})
	})

	Describe("FetchNext", func() {
		var v, t *testOwner

		BeforeEach(func() {
			v = newOwner("view", view)
			t = newOwner("thumb", thumb)
			Expect(s.RegisterClient(v)).To(Succeed())
			Expect(s.RegisterClient(t)).To(Succeed())
			_, _ = s.Submit(v, orders(view, "v1"))
			_, _ = s.Submit(t, orders(thumb, "t1"))
		})

		It("should only return sources inside the window", func() {
			src := s.FetchNext(0, 9)
			Expect(src).NotTo(BeNil())
			Expect(src.Key()).To(Equal("t1"))
			Expect(src.Processed()).To(BeTrue())

			Expect(s.FetchNext(0, 9)).To(BeNil())
		})

		It("should claim each source once", func() {
			first := s.FetchNext(0, 99)
			second := s.FetchNext(0, 99)

			Expect(first.Key()).To(Equal("v1"))
			Expect(second.Key()).To(Equal("t1"))
			Expect(s.FetchNext(0, 99)).To(BeNil())
		})

		It("should keep processed sources queued", func() {
			s.FetchNext(10, 99)
			Expect(s.Len()).To(Equal(2))
			Expect(s.Snapshot()[0].Processed).To(BeTrue())
		})

		It("should panic on an inverted window", func() {
			Expect(func() { s.FetchNext(10, 9) }).To(Panic())
		})
	})

	Describe("UnregisterClient", func() {
		It("should leave sources alive until the next submission", func() {
			// Given a client that unregisters without withdrawing its order
			v := newOwner("view", view)
			other := newOwner("other", thumb)
			Expect(s.RegisterClient(v)).To(Succeed())
			Expect(s.RegisterClient(other)).To(Succeed())
			sources, _ := s.Submit(v, orders(view, "p1"))
			s.UnregisterClient(v)

			// Then its source is still queued
			Expect(sources[0].Canceled()).To(BeFalse())
			Expect(s.Sources(v)).To(BeEmpty())

			// When another client submits
			_, err := s.Submit(other, orders(thumb, "t1"))
			Expect(err).NotTo(HaveOccurred())

			// Then the orphan is reconciled away
			Expect(sources[0].Canceled()).To(BeTrue())
			Expect(keysOf(s.Snapshot())).To(Equal([]string{"t1"}))
		})
	})

	Describe("Source", func() {
		It("should build the job once", func() {
			calls := 0
			cat := scheduler.NewCategory("count", 10, func(string) (scheduler.Command, error) {
				calls++
				return scheduler.CommandFunc(func(context.Context) error { return nil }), nil
			})
			o := newOwner("o", cat)
			Expect(s.RegisterClient(o)).To(Succeed())
			sources, _ := s.Submit(o, []scheduler.Order{cat.Order("k")})

			j1, err := sources[0].Job()
			Expect(err).NotTo(HaveOccurred())
			j2, err := sources[0].Job()
			Expect(err).NotTo(HaveOccurred())

			Expect(j1).To(BeIdenticalTo(j2))
			Expect(calls).To(Equal(1))
			Expect(j1.State()).To(Equal(scheduler.JobStateWaiting))
			Expect(j1.Owner()).To(Equal(o.ID()))
		})

		It("should surface factory failures to the caller", func() {
			cat := scheduler.NewCategory("broken", 10, func(string) (scheduler.Command, error) {
				return nil, errors.New("boom")
			})
			o := newOwner("o", cat)
			Expect(s.RegisterClient(o)).To(Succeed())
			sources, _ := s.Submit(o, []scheduler.Order{cat.Order("k")})

			err := sources[0].Wait(context.Background())
			Expect(srvErrors.IsJobFactoryError(err)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("boom")))
			Expect(sources[0].Done()).To(BeClosed())
		})

		It("should turn a factory panic into an error", func() {
			cat := scheduler.NewCategory("panics", 10, func(string) (scheduler.Command, error) {
				panic("bad key")
			})
			o := newOwner("o", cat)
			Expect(s.RegisterClient(o)).To(Succeed())
			sources, _ := s.Submit(o, []scheduler.Order{cat.Order("k")})

			_, err := sources[0].Job()
			Expect(srvErrors.IsJobFactoryError(err)).To(BeTrue())
		})

		It("should propagate cancellation into the job", func() {
			v := newOwner("view", view)
			Expect(s.RegisterClient(v)).To(Succeed())
			sources, _ := s.Submit(v, orders(view, "p1"))
			job, err := sources[0].Job()
			Expect(err).NotTo(HaveOccurred())

			sources[0].Cancel()

			Expect(job.Canceled()).To(BeTrue())
			Expect(job.Context().Done()).To(BeClosed())
		})
	})

	Describe("Close", func() {
		It("should cancel every source and fail later calls", func() {
			v := newOwner("view", view)
			Expect(s.RegisterClient(v)).To(Succeed())
			sources, _ := s.Submit(v, orders(view, "p1", "p2"))
			_, changed, _ := s.Acquire(0, 0)

			s.Close()

			Expect(sources[0].Canceled()).To(BeTrue())
			Expect(sources[1].Canceled()).To(BeTrue())
			Expect(changed).To(BeClosed())

			_, err := s.Submit(v, orders(view, "p3"))
			Expect(srvErrors.IsInvalidOperationError(err)).To(BeTrue())
			_, _, err = s.Acquire(0, 99)
			Expect(srvErrors.IsInvalidOperationError(err)).To(BeTrue())
			Expect(s.RegisterClient(newOwner("late", view))).NotTo(Succeed())
		})

		It("should be idempotent", func() {
			s.Close()
			Expect(s.Close).NotTo(Panic())
		})
	})
})
