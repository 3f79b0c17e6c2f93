package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RawPage is one page of search results exactly as the API returns it.
type RawPage struct {
	Data []RawRecord `json:"data"`
}

// RawRecord holds one unprocessed search result. Attributes is kept loosely
// typed because the API omits fields freely and mixes numbers and strings.
// Records are discarded as soon as they have been mapped.
type RawRecord struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes"`
	Links      RawLinks               `json:"links"`
}

// RawLinks is the nested links object of a raw record.
type RawLinks struct {
	Self string `json:"self"`
}

// Links is the normalized self-reference, stored as a JSON column.
type Links struct {
	Self string `json:"self,omitempty" validate:"omitempty,url"`
}

// Value implements driver.Valuer so sqlx writes Links as JSON.
func (l Links) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for reading the JSON column back.
func (l *Links) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = Links{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("links: cannot scan %T", src)
	}
}

// StringList is an ordered list of strings stored as a JSON column.
type StringList []string

// Value implements driver.Valuer. A nil list is written as an empty JSON
// array so the column never holds SQL NULL.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("string list: cannot scan %T", src)
	}
}

// Campground is the normalized, validated record ready for PostgreSQL
// storage. Pointer fields distinguish "absent in the source" from a zero
// value; price_low = nil means unknown price, not free.
type Campground struct {
	ID                     string     `db:"id" validate:"required"`
	Type                   string     `db:"type"`
	Links                  Links      `db:"links"`
	Name                   string     `db:"name"`
	Latitude               *float64   `db:"latitude" validate:"omitempty,latitude"`
	Longitude              *float64   `db:"longitude" validate:"omitempty,longitude"`
	RegionName             string     `db:"region_name"`
	AdministrativeArea     *string    `db:"administrative_area"`
	NearestCityName        *string    `db:"nearest_city_name"`
	AccommodationTypeNames StringList `db:"accommodation_type_names"`
	Bookable               bool       `db:"bookable"`
	CamperTypes            StringList `db:"camper_types"`
	Operator               *string    `db:"operator"`
	PhotoURL               *string    `db:"photo_url" validate:"omitempty,url"`
	PhotoURLs              StringList `db:"photo_urls" validate:"omitempty,dive,url"`
	PhotosCount            int        `db:"photos_count" validate:"gte=0"`
	Rating                 *float64   `db:"rating"`
	ReviewsCount           int        `db:"reviews_count" validate:"gte=0"`
	Slug                   *string    `db:"slug"`
	PriceLow               *float64   `db:"price_low"`
	PriceHigh              *float64   `db:"price_high"`
	AvailabilityUpdatedAt  *time.Time `db:"availability_updated_at"`
}
