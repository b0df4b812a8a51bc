package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/nitecap/internal/adapters/repository"
	"github.com/okian/nitecap/internal/domain/venue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty in-memory store", t, func() {
		store := repository.NewMemoryStore()

		Convey("When a venue is upserted", func() {
			v := venue.Venue{ID: "v1", Name: "La Descarga", City: "Los Angeles"}
			So(store.Upsert(ctx, v), ShouldBeNil)

			Convey("Then it can be fetched back by ID", func() {
				got, err := store.Get(ctx, "v1")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, v)
			})

			Convey("And upserting again replaces it", func() {
				v.Name = "La Descarga Annex"
				So(store.Upsert(ctx, v), ShouldBeNil)

				got, err := store.Get(ctx, "v1")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "La Descarga Annex")
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When an unknown ID is fetched", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then the store reports its sentinel", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a venue is deleted", func() {
			So(store.Upsert(ctx, venue.Venue{ID: "v1", Name: "El Cid"}), ShouldBeNil)
			So(store.Delete(ctx, "v1"), ShouldBeNil)

			Convey("Then it is gone", func() {
				_, err := store.Get(ctx, "v1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})

			Convey("And deleting an unknown ID is a no-op", func() {
				So(store.Delete(ctx, "missing"), ShouldBeNil)
			})
		})

		Convey("When venues span several cities", func() {
			So(store.Upsert(ctx, venue.Venue{ID: "la1", City: "Los Angeles"}), ShouldBeNil)
			So(store.Upsert(ctx, venue.Venue{ID: "la2", City: " los angeles "}), ShouldBeNil)
			So(store.Upsert(ctx, venue.Venue{ID: "sf1", City: "San Francisco"}), ShouldBeNil)

			Convey("Then listing matches the city case-insensitively", func() {
				got, err := store.ListByCity(ctx, "LOS ANGELES")
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
			})

			Convey("And an empty city matches everything", func() {
				got, err := store.ListByCity(ctx, "")
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
			})

			Convey("And the count covers every city", func() {
				So(store.Count(ctx), ShouldEqual, 3)
			})
		})
	})
}
