package services

import (
	"strconv"
	"time"

	"campground-scraper/models"
)

// availabilityLayout is the only timestamp format the API emits,
// e.g. "2023-05-01T12:00:00.000Z".
const availabilityLayout = "2006-01-02T15:04:05.000Z"

// Mapper converts raw search records into normalized Campgrounds.
//
// Mapping never fails: missing or malformed optional attributes fall back
// to the field's default (nil pointer, empty list, false, zero count).
// Price strings are coerced to floats only when present and non-empty so
// an unknown price stays distinguishable from a free one.
type Mapper struct{}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map converts one raw record. It is a pure function with no side effects.
func (m *Mapper) Map(raw models.RawRecord) models.Campground {
	attrs := raw.Attributes

	return models.Campground{
		ID:                     raw.ID,
		Type:                   raw.Type,
		Links:                  models.Links{Self: raw.Links.Self},
		Name:                   asString(attrs["name"]),
		Latitude:               asFloat(attrs["latitude"]),
		Longitude:              asFloat(attrs["longitude"]),
		RegionName:             asString(attrs["region-name"]),
		AdministrativeArea:     asOptString(attrs["administrative-area"]),
		NearestCityName:        asOptString(attrs["nearest-city-name"]),
		AccommodationTypeNames: asStringList(attrs["accommodation-type-names"]),
		Bookable:               asBool(attrs["bookable"]),
		CamperTypes:            asStringList(attrs["camper-types"]),
		Operator:               asOptString(attrs["operator"]),
		PhotoURL:               asOptString(attrs["photo-url"]),
		PhotoURLs:              asStringList(attrs["photo-urls"]),
		PhotosCount:            asInt(attrs["photos-count"]),
		Rating:                 asFloat(attrs["rating"]),
		ReviewsCount:           asInt(attrs["reviews-count"]),
		Slug:                   asOptString(attrs["slug"]),
		PriceLow:               asPrice(attrs["price-low"]),
		PriceHigh:              asPrice(attrs["price-high"]),
		AvailabilityUpdatedAt:  asTimestamp(attrs["availability-updated-at"]),
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asOptString(v interface{}) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func asFloat(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

func asInt(v interface{}) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asStringList(v interface{}) models.StringList {
	list := models.StringList{}
	items, ok := v.([]interface{})
	if !ok {
		return list
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
		}
	}
	return list
}

// asPrice coerces the API's numeric-range-as-string fields. Absent, empty
// or unparseable values stay nil rather than becoming 0.
func asPrice(v interface{}) *float64 {
	switch p := v.(type) {
	case string:
		if p == "" {
			return nil
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil
		}
		return &f
	case float64:
		return &p
	default:
		return nil
	}
}

// asTimestamp parses the fixed ISO layout; absence or a parse failure
// yields nil without surfacing an error.
func asTimestamp(v interface{}) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(availabilityLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
