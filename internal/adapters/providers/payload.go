// Package providers holds the provider-facing enrichment plumbing: mapping
// raw place payloads into venue candidates and validating social profiles.
//
// External providers stay collaborators. Nothing here models a provider's
// full wire format; payloads are probed by path and any missing field
// simply leaves the candidate field empty.
package providers

import (
	"github.com/tidwall/gjson"

	"github.com/okian/nitecap/internal/domain/geo"
	"github.com/okian/nitecap/internal/domain/venue"
)

// nightlifeCategoryIDs are the place-taxonomy categories that mark a venue
// as nightlife when a details payload carries one of them.
var nightlifeCategoryIDs = map[string]struct{}{
	"4bf58dd8d48988d116941735": {}, // Bar
	"4bf58dd8d48988d11f941735": {}, // Nightclub
	"52e81612bcbc57f1066b7a0d": {}, // Cocktail Bar
	"4bf58dd8d48988d11e941735": {}, // Lounge
	"52e81612bcbc57f1066b79ed": {}, // Karaoke Bar
	"4bf58dd8d48988d120941735": {}, // Strip Club
	"56aa371be4b08b9a8d57355a": {}, // Speakeasy
	"4bf58dd8d48988d1d6941735": {}, // Dive Bar
}

// CandidateFromPlace maps a nearby-search place payload into a Venue.
// Missing fields stay zero; a place without a usable coordinate pair comes
// back without a Location and is later excluded from discovery.
func CandidateFromPlace(raw []byte) venue.Venue {
	v := venue.Venue{
		Name:          gjson.GetBytes(raw, "name").String(),
		Address:       gjson.GetBytes(raw, "vicinity").String(),
		GooglePlaceID: gjson.GetBytes(raw, "place_id").String(),
		Website:       gjson.GetBytes(raw, "website").String(),
		Rating:        gjson.GetBytes(raw, "rating").Float(),
		PriceLevel:    int(gjson.GetBytes(raw, "price_level").Int()),
	}

	lat := gjson.GetBytes(raw, "geometry.location.lat")
	lng := gjson.GetBytes(raw, "geometry.location.lng")
	if lat.Exists() && lng.Exists() {
		v.Location = &geo.Point{Lat: lat.Float(), Lng: lng.Float()}
	}

	for _, t := range gjson.GetBytes(raw, "types").Array() {
		v.Types = append(v.Types, t.String())
	}

	return v
}

// ApplyDetails merges a place-details payload into an existing candidate:
// categories, the nightlife flag, and the descriptive fields the nearby
// search does not carry. Fields absent from the payload are left alone.
func ApplyDetails(v *venue.Venue, raw []byte) {
	if id := gjson.GetBytes(raw, "fsq_id").String(); id != "" {
		v.FoursquareID = id
	}

	if cats := gjson.GetBytes(raw, "categories").Array(); len(cats) > 0 {
		v.Categories = v.Categories[:0]
		for _, c := range cats {
			if name := c.Get("name").String(); name != "" {
				v.Categories = append(v.Categories, name)
			}
			if _, ok := nightlifeCategoryIDs[c.Get("id").String()]; ok {
				v.IsNightlife = true
			}
		}
	}

	if site := gjson.GetBytes(raw, "website").String(); site != "" {
		v.Website = site
	}
	if rating := gjson.GetBytes(raw, "rating"); rating.Exists() {
		v.Rating = rating.Float()
	}
	if pop := gjson.GetBytes(raw, "popularity"); pop.Exists() {
		v.Popularity = pop.Float()
	}
	if insta := gjson.GetBytes(raw, "social_media.instagram").String(); insta != "" {
		v.Instagram = insta
	}
	if desc := gjson.GetBytes(raw, "description").String(); desc != "" {
		v.Summary = desc
	}
}
