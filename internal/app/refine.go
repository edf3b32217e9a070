package app

import (
	"strconv"
	"strings"

	"hotel_weather/internal/domain"
)

// Drop reasons reported by RefineWithStats.
const (
	DropMissingField = "missing_field"
	DropBadNumber    = "bad_number"
	DropOutOfRange   = "out_of_range"
)

// RefineStats counts kept rows and dropped rows per reason.
type RefineStats struct {
	Kept    int
	Dropped map[string]int
}

// Refine drops rows that cannot be used downstream: empty text fields,
// coordinates that are not numbers, and coordinates out of range.
// Rows are dropped, never repaired. The Id column is discarded.
func Refine(records []domain.RawRecord) []domain.HotelRecord {
	out, _ := RefineWithStats(records)
	return out
}

func RefineWithStats(records []domain.RawRecord) ([]domain.HotelRecord, RefineStats) {
	st := RefineStats{Dropped: map[string]int{}}
	out := make([]domain.HotelRecord, 0, len(records))
	for _, r := range records {
		h, reason := refineOne(r)
		if reason != "" {
			st.Dropped[reason]++
			continue
		}
		out = append(out, h)
	}
	st.Kept = len(out)
	return out, st
}

func refineOne(r domain.RawRecord) (domain.HotelRecord, string) {
	lat, latOK := parseCoord(r.Latitude)
	lon, lonOK := parseCoord(r.Longitude)
	if !latOK || !lonOK {
		return domain.HotelRecord{}, DropBadNumber
	}
	if r.Name == "" || r.Country == "" || r.City == "" {
		return domain.HotelRecord{}, DropMissingField
	}
	// written so that NaN fails both comparisons
	if !(lat >= -90 && lat <= 90) || !(lon >= -180 && lon <= 180) {
		return domain.HotelRecord{}, DropOutOfRange
	}
	return domain.HotelRecord{
		Name:      r.Name,
		Country:   r.Country,
		City:      r.City,
		Latitude:  lat,
		Longitude: lon,
	}, ""
}

// parseCoord coerces a coordinate cell. Empty, NaN and hexadecimal
// cells are not numbers.
func parseCoord(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if d := strings.TrimLeft(s, "+-"); strings.HasPrefix(d, "0x") || strings.HasPrefix(d, "0X") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != f {
		return 0, false
	}
	return f, true
}
