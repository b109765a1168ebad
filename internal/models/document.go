package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrNonFiniteNumber is returned when a numeric string holds NaN or an infinity.
var ErrNonFiniteNumber = errors.New("numeric value must be finite")

// GeocodeResponse is the top-level payload returned by the Kakao Local address search.
// Documents are kept in provider order.
type GeocodeResponse struct {
	Meta      Meta              `json:"meta"`      // Paging information reported by the provider.
	Documents []GeocodeDocument `json:"documents"` // Candidate results.
}

// Meta mirrors the provider "meta" object.
type Meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

// GeocodeDocument is one candidate result.
//
// Provider field mapping:
//
//	place_name   -> PlaceName
//	address_name -> AddressName
//	y            -> Latitude
//	x            -> Longitude
//	distance     -> Distance
type GeocodeDocument struct {
	PlaceName   string `json:"place_name"`
	AddressName string `json:"address_name"`
	Latitude    Number `json:"y"`
	Longitude   Number `json:"x"`
	Distance    Number `json:"distance"`
}

// Coordinates returns the document position.
func (d GeocodeDocument) Coordinates() Coordinates {
	return Coordinates{Latitude: float64(d.Latitude), Longitude: float64(d.Longitude)}
}

// Number is a float64 that decodes from either a JSON number or a numeric string.
// Kakao sends coordinates as strings on some endpoints and "" for an unknown distance.
type Number float64

// UnmarshalJSON accepts 12.3, "12.3", "" and null. NaN and infinities are rejected
// so a decoded value always encodes back.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode numeric string: %w", err)
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q: %w", s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %q", ErrNonFiniteNumber, s)
		}
		*n = Number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid numeric value: %w", err)
	}
	*n = Number(f)

	return nil
}
