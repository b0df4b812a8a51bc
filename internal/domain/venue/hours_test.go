package venue_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/nitecap/internal/domain/venue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHours_UnmarshalJSON(t *testing.T) {
	Convey("Given provider hours payloads in their three shapes", t, func() {
		Convey("When a block is an open/close pair", func() {
			var h venue.Hours
			err := json.Unmarshal([]byte(`{"friday": [["18:00", "02:00"]]}`), &h)

			Convey("Then it parses into a valid block", func() {
				So(err, ShouldBeNil)
				So(h["friday"], ShouldHaveLength, 1)
				So(h["friday"][0].Valid, ShouldBeTrue)
				So(h["friday"][0].Open, ShouldEqual, "18:00")
				So(h["friday"][0].Close, ShouldEqual, "02:00")
			})
		})

		Convey("When a block is a dashed range string", func() {
			var h venue.Hours
			err := json.Unmarshal([]byte(`{"monday": ["10:00-22:00"]}`), &h)

			Convey("Then it splits into open and close", func() {
				So(err, ShouldBeNil)
				So(h["monday"][0].Valid, ShouldBeTrue)
				So(h["monday"][0].Open, ShouldEqual, "10:00")
				So(h["monday"][0].Close, ShouldEqual, "22:00")
			})
		})

		Convey("When a block has an unrecognized shape", func() {
			var h venue.Hours
			err := json.Unmarshal([]byte(`{"tuesday": [12345, {"open": true}]}`), &h)

			Convey("Then parsing never fails; blocks are marked invalid", func() {
				So(err, ShouldBeNil)
				So(h["tuesday"], ShouldHaveLength, 2)
				So(h["tuesday"][0].Valid, ShouldBeFalse)
				So(h["tuesday"][1].Valid, ShouldBeFalse)
			})
		})

		Convey("When days mix valid and invalid blocks", func() {
			var h venue.Hours
			raw := `{"saturday": [["20:00", "04:00"], "garbled"]}`
			err := json.Unmarshal([]byte(raw), &h)

			Convey("Then each block keeps its own validity", func() {
				So(err, ShouldBeNil)
				So(h["saturday"][0].Valid, ShouldBeTrue)
				So(h["saturday"][1].Valid, ShouldBeFalse)
			})
		})
	})
}

func TestHours_HasLateClose(t *testing.T) {
	parse := func(raw string) venue.Hours {
		var h venue.Hours
		So(json.Unmarshal([]byte(raw), &h), ShouldBeNil)
		return h
	}

	Convey("Given parsed weekly hours", t, func() {
		Convey("When a day closes after 23:00", func() {
			h := parse(`{"friday": [["18:00", "23:30"]]}`)

			Convey("Then the venue counts as late-closing", func() {
				So(h.HasLateClose(), ShouldBeTrue)
			})
		})

		Convey("When a day closes past midnight", func() {
			h := parse(`{"saturday": [["20:00", "02:00"]]}`)

			Convey("Then the wrap into early morning counts as late", func() {
				So(h.HasLateClose(), ShouldBeTrue)
			})
		})

		Convey("When the close lands exactly on the boundaries", func() {
			Convey("Then 23:00 is late", func() {
				So(parse(`{"friday": [["18:00", "23:00"]]}`).HasLateClose(), ShouldBeTrue)
			})

			Convey("And 06:00 is not", func() {
				So(parse(`{"friday": [["18:00", "06:00"]]}`).HasLateClose(), ShouldBeFalse)
			})
		})

		Convey("When every day closes early", func() {
			h := parse(`{"monday": [["10:00", "22:00"]], "tuesday": [["10:00", "21:00"]]}`)

			Convey("Then the venue does not count as late-closing", func() {
				So(h.HasLateClose(), ShouldBeFalse)
			})
		})

		Convey("When the only blocks are invalid or unparseable", func() {
			h := parse(`{"friday": [12345, ["18:00", "25:99"]]}`)

			Convey("Then they contribute nothing", func() {
				So(h.HasLateClose(), ShouldBeFalse)
			})
		})

		Convey("When the hours are empty or nil", func() {
			Convey("Then there is no late close", func() {
				So(venue.Hours{}.HasLateClose(), ShouldBeFalse)
				So(venue.Hours(nil).HasLateClose(), ShouldBeFalse)
			})
		})
	})
}
