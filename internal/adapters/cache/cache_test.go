package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/nitecap/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

// brokenBackend simulates an unreachable cache service.
type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestClient_GetOrCompute(t *testing.T) {
	ctx := context.Background()
	params := map[string]any{"city": "los angeles", "radius": 1500}

	Convey("Given a cache client over an in-memory backend", t, func() {
		client := cache.New(cache.NewMemoryBackend())

		Convey("When the same request is made twice", func() {
			var calls int32
			loader := func(context.Context) ([]string, error) {
				atomic.AddInt32(&calls, 1)
				return []string{"la descarga", "the spare room"}, nil
			}

			first, err1 := cache.GetOrCompute(ctx, client, "venues", params, 6, loader)
			second, err2 := cache.GetOrCompute(ctx, client, "venues", params, 6, loader)

			Convey("Then the loader runs exactly once", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(atomic.LoadInt32(&calls), ShouldEqual, 1)
				So(second, ShouldResemble, first)
			})
		})

		Convey("When the loader fails", func() {
			boom := errors.New("upstream down")
			_, err := client.GetOrCompute(ctx, "venues", params, 6, func(context.Context) ([]byte, error) {
				return nil, boom
			})

			Convey("Then the error propagates and nothing is cached", func() {
				So(errors.Is(err, boom), ShouldBeTrue)

				var calls int32
				_, _ = client.GetOrCompute(ctx, "venues", params, 6, func(context.Context) ([]byte, error) {
					atomic.AddInt32(&calls, 1)
					return []byte("ok"), nil
				})
				So(atomic.LoadInt32(&calls), ShouldEqual, 1)
			})
		})

		Convey("When requests differ in canonical parameters", func() {
			var calls int32
			loader := func(context.Context) ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				return []byte("page"), nil
			}

			_, _ = client.GetOrCompute(ctx, "venues", map[string]any{"city": "los angeles"}, 6, loader)
			_, _ = client.GetOrCompute(ctx, "venues", map[string]any{"city": "san francisco"}, 6, loader)

			Convey("Then each distinct request loads independently", func() {
				So(atomic.LoadInt32(&calls), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a backend with a controllable clock", t, func() {
		var mu sync.Mutex
		now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}
		advance := func(d time.Duration) {
			mu.Lock()
			now = now.Add(d)
			mu.Unlock()
		}

		client := cache.New(cache.NewMemoryBackend(cache.WithMemoryClock(clock)))

		Convey("When the entry's TTL elapses", func() {
			var calls int32
			loader := func(context.Context) ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				return []byte("page"), nil
			}

			_, _ = client.GetOrCompute(ctx, "venues", params, 6, loader)
			advance(5 * time.Hour)
			_, _ = client.GetOrCompute(ctx, "venues", params, 6, loader)
			advance(2 * time.Hour)
			_, _ = client.GetOrCompute(ctx, "venues", params, 6, loader)

			Convey("Then the entry serves until expiry and reloads after", func() {
				So(atomic.LoadInt32(&calls), ShouldEqual, 2)
			})
		})
	})

	Convey("Given an unreachable backend", t, func() {
		client := cache.New(brokenBackend{})

		Convey("When a request comes in", func() {
			var calls int32
			loader := func(context.Context) ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				return []byte("page"), nil
			}

			first, err1 := client.GetOrCompute(ctx, "venues", params, 6, loader)
			second, err2 := client.GetOrCompute(ctx, "venues", params, 6, loader)

			Convey("Then every call falls back to the loader and succeeds", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldResemble, []byte("page"))
				So(second, ShouldResemble, []byte("page"))
				So(atomic.LoadInt32(&calls), ShouldEqual, 2)
			})
		})
	})
}

func TestClient_SingleFlight(t *testing.T) {
	ctx := context.Background()
	params := map[string]any{"city": "los angeles"}

	Convey("Given a client with single-flight enabled", t, func() {
		client := cache.New(cache.NewMemoryBackend(), cache.WithSingleFlight())

		Convey("When many goroutines miss on the same key at once", func() {
			var calls int32
			release := make(chan struct{})
			loader := func(context.Context) ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return []byte("page"), nil
			}

			const n = 8
			results := make([][]byte, n)
			errs := make([]error, n)

			var started, done sync.WaitGroup
			started.Add(n)
			done.Add(n)
			for i := 0; i < n; i++ {
				go func(i int) {
					defer done.Done()
					started.Done()
					results[i], errs[i] = client.GetOrCompute(ctx, "venues", params, 6, loader)
				}(i)
			}

			started.Wait()
			time.Sleep(50 * time.Millisecond) // let the stragglers reach the flight
			close(release)
			done.Wait()

			Convey("Then one loader execution serves every caller", func() {
				So(atomic.LoadInt32(&calls), ShouldEqual, 1)
				for i := 0; i < n; i++ {
					So(errs[i], ShouldBeNil)
					So(results[i], ShouldResemble, []byte("page"))
				}
			})
		})

		Convey("When a waiter's context is canceled mid-flight", func() {
			release := make(chan struct{})
			loader := func(context.Context) ([]byte, error) {
				<-release
				return []byte("page"), nil
			}

			go func() {
				_, _ = client.GetOrCompute(ctx, "venues", params, 6, loader)
			}()
			time.Sleep(20 * time.Millisecond)

			waitCtx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := client.GetOrCompute(waitCtx, "venues", params, 6, loader)
			close(release)

			Convey("Then the waiter returns the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
