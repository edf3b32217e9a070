package app

import (
	"sort"

	"hotel_weather/internal/domain"
)

// CitySelection maps a country code to its most hoteled city.
type CitySelection map[string]domain.CityKey

// Keys returns the selected cities ordered by country.
func (s CitySelection) Keys() []domain.CityKey {
	out := make([]domain.CityKey, 0, len(s))
	for _, k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// SelectMostHoteled picks, per country, the city with the most hotels.
// Equal counts go to the lexicographically smallest city name so the
// choice does not depend on row order.
func SelectMostHoteled(records []domain.HotelRecord) CitySelection {
	counts := make(map[domain.CityKey]int)
	for _, r := range records {
		counts[r.Key()]++
	}

	sel := make(CitySelection)
	best := make(map[string]int)
	for k, n := range counts {
		cur, ok := sel[k.Country]
		switch {
		case !ok, n > best[k.Country], n == best[k.Country] && k.City < cur.City:
			sel[k.Country] = k
			best[k.Country] = n
		}
	}
	return sel
}

// BucketCities groups the hotels of the selected cities. Buckets are ordered
// by country; hotels keep their input order.
func BucketCities(records []domain.HotelRecord, sel CitySelection) []domain.CityBucket {
	keys := sel.Keys()
	idx := make(map[domain.CityKey]int, len(keys))
	buckets := make([]domain.CityBucket, len(keys))
	for i, k := range keys {
		idx[k] = i
		buckets[i].Key = k
	}
	for _, r := range records {
		if i, ok := idx[r.Key()]; ok {
			buckets[i].Hotels = append(buckets[i].Hotels, r)
		}
	}
	return buckets
}

// ComputeCityCenters returns the bounding-box midpoint of every bucket.
func ComputeCityCenters(buckets []domain.CityBucket) []domain.CityCenter {
	out := make([]domain.CityCenter, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, domain.CityCenter{Key: b.Key, Center: b.Center()})
	}
	return out
}
