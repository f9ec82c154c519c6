package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"dronefleet/internal/infra/cache"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Cache", func() {
	var (
		cacheInstance *cache.RistrettoCache
		ctx           context.Context
		loads         atomic.Int32
		loader        func(context.Context) (any, error)
	)

	ginkgo.BeforeEach(func() {
		var err error
		cacheInstance, err = cache.New(nil)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		ctx = context.Background()
		loads.Store(0)
		loader = func(context.Context) (any, error) {
			loads.Add(1)
			return "loaded-value", nil
		}
	})

	ginkgo.AfterEach(func() {
		cacheInstance.Close()
	})

	ginkgo.Context("GetOrLoad", func() {
		ginkgo.When("the key is not cached", func() {
			ginkgo.It("should load and cache the value", func() {
				value, err := cacheInstance.GetOrLoad(ctx, "Drones", loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(value).To(gomega.Equal("loaded-value"))

				value, err = cacheInstance.GetOrLoad(ctx, "Drones", loader)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(value).To(gomega.Equal("loaded-value"))
				gomega.Expect(loads.Load()).To(gomega.Equal(int32(1)))
			})
		})

		ginkgo.When("the loader fails", func() {
			ginkgo.It("should return the error and cache nothing", func() {
				failure := errors.New("boom")
				_, err := cacheInstance.GetOrLoad(ctx, "Drones", func(context.Context) (any, error) {
					return nil, failure
				})
				gomega.Expect(err).To(gomega.MatchError(failure))

				_, found := cacheInstance.Get(ctx, "Drones")
				gomega.Expect(found).To(gomega.BeFalse())
			})
		})

		ginkgo.When("several callers load the same key at once", func() {
			ginkgo.It("should share one load", func() {
				release := make(chan struct{})
				slowLoader := func(context.Context) (any, error) {
					loads.Add(1)
					<-release
					return "shared", nil
				}

				var wg sync.WaitGroup
				results := make([]any, 5)
				for i := range results {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						results[i], _ = cacheInstance.GetOrLoad(ctx, "Pilots", slowLoader)
					}(i)
				}

				time.Sleep(50 * time.Millisecond)
				close(release)
				wg.Wait()

				gomega.Expect(loads.Load()).To(gomega.Equal(int32(1)))
				for _, r := range results {
					gomega.Expect(r).To(gomega.Equal("shared"))
				}
			})
		})

		ginkgo.When("the context is already cancelled", func() {
			ginkgo.It("should not call the loader", func() {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()

				_, err := cacheInstance.GetOrLoad(cancelled, "Drones", loader)
				gomega.Expect(err).To(gomega.MatchError(context.Canceled))
				gomega.Expect(loads.Load()).To(gomega.Equal(int32(0)))
			})
		})
	})

	ginkgo.Context("Invalidate", func() {
		ginkgo.It("should force the next call to load again", func() {
			_, err := cacheInstance.GetOrLoad(ctx, "Flights", loader)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			cacheInstance.Invalidate(ctx, "Flights")

			_, err = cacheInstance.GetOrLoad(ctx, "Flights", loader)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(loads.Load()).To(gomega.Equal(int32(2)))
		})

		ginkgo.It("should keep an in-flight load out of the cache", func() {
			started := make(chan struct{})
			release := make(chan struct{})
			done := make(chan struct{})
			go func() {
				defer close(done)
				_, _ = cacheInstance.GetOrLoad(ctx, "Flights", func(context.Context) (any, error) {
					close(started)
					<-release
					return "stale", nil
				})
			}()

			<-started
			cacheInstance.Invalidate(ctx, "Flights")
			close(release)
			<-done

			_, found := cacheInstance.Get(ctx, "Flights")
			gomega.Expect(found).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("with caching disabled", func() {
		ginkgo.It("should load on every call", func() {
			uncached, err := cache.New(&cache.CacheConfig{MaxCost: 10, NumCounters: 100, BufferItems: 64})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			defer uncached.Close()

			_, _ = uncached.GetOrLoad(ctx, "Drones", loader)
			_, _ = uncached.GetOrLoad(ctx, "Drones", loader)
			gomega.Expect(loads.Load()).To(gomega.Equal(int32(2)))
		})
	})
})
