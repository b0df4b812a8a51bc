package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/nitecap/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given no configuration sources", t, func() {
		cfg, err := config.Load(ctx)

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.CacheTTLHours, ShouldEqual, 6)
			So(cfg.RateWindowSeconds, ShouldEqual, 60)
			So(cfg.RateLimit, ShouldEqual, 90)
			So(cfg.RadiusStepMeters, ShouldEqual, 1000)
			So(cfg.MaxWidenings, ShouldEqual, 3)
			So(cfg.DefaultPageSize, ShouldEqual, 20)
			So(cfg.MaxPageSize, ShouldEqual, 100)
			So(cfg.CacheSingleFlight, ShouldBeFalse)
		})
	})

	Convey("Given environment overrides", t, func() {
		t.Setenv("NITECAP_REDIS_ADDR", "localhost:6379")
		t.Setenv("NITECAP_CACHE_TTL_HOURS", "12")
		t.Setenv("NITECAP_CACHE_SINGLE_FLIGHT", "true")
		t.Setenv("NITECAP_LOG_LEVEL", "debug")

		cfg, err := config.Load(ctx)

		Convey("Then the environment wins over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.RedisAddr, ShouldEqual, "localhost:6379")
			So(cfg.CacheTTLHours, ShouldEqual, 12)
			So(cfg.CacheSingleFlight, ShouldBeTrue)
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})

	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		raw := []byte("rate_limit: 45\nrate_window_seconds: 30\nmetrics_addr: \":9100\"\n")
		So(os.WriteFile(path, raw, 0o600), ShouldBeNil)
		t.Setenv("NITECAP_CONFIG", path)

		Convey("When only the file is present", func() {
			cfg, err := config.Load(ctx)

			Convey("Then file values override defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.RateLimit, ShouldEqual, 45)
				So(cfg.RateWindowSeconds, ShouldEqual, 30)
				So(cfg.MetricsAddr, ShouldEqual, ":9100")
			})
		})

		Convey("When the environment disagrees with the file", func() {
			t.Setenv("NITECAP_RATE_LIMIT", "10")

			cfg, err := config.Load(ctx)

			Convey("Then the environment wins over the file", func() {
				So(err, ShouldBeNil)
				So(cfg.RateLimit, ShouldEqual, 10)
				So(cfg.RateWindowSeconds, ShouldEqual, 30)
			})
		})

		Convey("When the file does not exist", func() {
			t.Setenv("NITECAP_CONFIG", filepath.Join(dir, "missing.yaml"))

			_, err := config.Load(ctx)

			Convey("Then loading fails with the load sentinel", func() {
				So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
			})
		})
	})

	Convey("Given out-of-range values", t, func() {
		Convey("When the cache TTL is not positive", func() {
			t.Setenv("NITECAP_CACHE_TTL_HOURS", "0")

			_, err := config.Load(ctx)

			Convey("Then validation rejects the config", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the rate limit bounds are not positive", func() {
			t.Setenv("NITECAP_RATE_LIMIT", "-1")

			_, err := config.Load(ctx)

			Convey("Then validation rejects the config", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
