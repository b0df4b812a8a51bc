package ratelimit_test

import (
	"testing"
	"time"

	"github.com/okian/nitecap/internal/adapters/ratelimit"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLimiter_Allow(t *testing.T) {
	Convey("Given a limiter with a controllable clock", t, func() {
		now := time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }

		Convey("When calls stay within the limit", func() {
			l := ratelimit.New(
				ratelimit.WithWindow(60*time.Second),
				ratelimit.WithLimit(3),
				ratelimit.WithClock(clock),
			)

			Convey("Then they are admitted and the next is denied", func() {
				So(l.Allow("google"), ShouldBeTrue)
				So(l.Allow("google"), ShouldBeTrue)
				So(l.Allow("google"), ShouldBeTrue)
				So(l.Allow("google"), ShouldBeFalse)
			})
		})

		Convey("When recorded calls slide out of the window", func() {
			l := ratelimit.New(
				ratelimit.WithWindow(60*time.Second),
				ratelimit.WithLimit(2),
				ratelimit.WithClock(func() time.Time { return now }),
			)

			So(l.Allow("google"), ShouldBeTrue)
			So(l.Allow("google"), ShouldBeTrue)
			So(l.Allow("google"), ShouldBeFalse)

			now = now.Add(61 * time.Second)

			Convey("Then budget is restored", func() {
				So(l.Allow("google"), ShouldBeTrue)
			})
		})

		Convey("When a denial happens", func() {
			l := ratelimit.New(
				ratelimit.WithWindow(60*time.Second),
				ratelimit.WithLimit(1),
				ratelimit.WithClock(func() time.Time { return now }),
			)

			So(l.Allow("google"), ShouldBeTrue)
			So(l.Allow("google"), ShouldBeFalse)
			So(l.Allow("google"), ShouldBeFalse)

			now = now.Add(61 * time.Second)

			Convey("Then denied attempts consumed no budget", func() {
				So(l.Allow("google"), ShouldBeTrue)
			})
		})

		Convey("When different providers share one limiter", func() {
			l := ratelimit.New(
				ratelimit.WithWindow(60*time.Second),
				ratelimit.WithLimit(1),
				ratelimit.WithClock(clock),
			)

			So(l.Allow("google"), ShouldBeTrue)

			Convey("Then each provider has its own budget", func() {
				So(l.Allow("foursquare"), ShouldBeTrue)
				So(l.Allow("instagram"), ShouldBeTrue)
				So(l.Allow("google"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a limiter with default bounds", t, func() {
		now := time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC)
		l := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))

		Convey("When the full default budget is consumed", func() {
			admitted := 0
			for i := 0; i < 90; i++ {
				if l.Allow("google") {
					admitted++
				}
			}

			Convey("Then exactly ninety calls fit in one window", func() {
				So(admitted, ShouldEqual, 90)
				So(l.Allow("google"), ShouldBeFalse)
			})
		})
	})
}
