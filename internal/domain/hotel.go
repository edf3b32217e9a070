package domain

import (
	"math"
	"strconv"
)

// RawRecord is one CSV row exactly as read from the archive.
type RawRecord struct {
	ID        string `csv:"Id"`
	Name      string `csv:"Name"`
	Country   string `csv:"Country"`
	City      string `csv:"City"`
	Latitude  string `csv:"Latitude"`
	Longitude string `csv:"Longitude"`
}

// HotelRecord is a validated hotel row. Coordinates are always in range.
type HotelRecord struct {
	Name      string
	Country   string
	City      string
	Latitude  float64
	Longitude float64
}

func (h HotelRecord) Key() CityKey { return CityKey{Country: h.Country, City: h.City} }

func (h HotelRecord) Coord() Coord { return Coord{Lat: h.Latitude, Lon: h.Longitude} }

// Raw renders the record back to its textual form (without Id).
// Floats use the shortest representation that parses back to the same value.
func (h HotelRecord) Raw() RawRecord {
	return RawRecord{
		Name:      h.Name,
		Country:   h.Country,
		City:      h.City,
		Latitude:  strconv.FormatFloat(h.Latitude, 'g', -1, 64),
		Longitude: strconv.FormatFloat(h.Longitude, 'g', -1, 64),
	}
}

// CityKey identifies a locality. Comparable, so it is used as a map key.
type CityKey struct {
	Country string
	City    string
}

// String renders the key the way output directories are named.
func (k CityKey) String() string { return k.City + "_" + k.Country }

// Less orders keys by country, then city.
func (k CityKey) Less(o CityKey) bool {
	if k.Country != o.Country {
		return k.Country < o.Country
	}
	return k.City < o.City
}

type Coord struct{ Lat, Lon float64 }

// CityBucket is one selected city with all of its hotels.
type CityBucket struct {
	Key    CityKey
	Hotels []HotelRecord
}

// Center is the midpoint of the bounding box of all member coordinates.
// It is not the centroid of the points.
func (b CityBucket) Center() Coord {
	if len(b.Hotels) == 0 {
		return Coord{}
	}
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, h := range b.Hotels {
		minLat = math.Min(minLat, h.Latitude)
		maxLat = math.Max(maxLat, h.Latitude)
		minLon = math.Min(minLon, h.Longitude)
		maxLon = math.Max(maxLon, h.Longitude)
	}
	return Coord{Lat: (maxLat + minLat) / 2, Lon: (maxLon + minLon) / 2}
}

type CityCenter struct {
	Key    CityKey
	Center Coord
}

// HotelRow is a hotel as written to the output CSV chunks.
type HotelRow struct {
	Name      string  `csv:"Name"`
	Address   string  `csv:"Address"`
	Latitude  float64 `csv:"Latitude"`
	Longitude float64 `csv:"Longitude"`
}

// CenterRow is the single row of center_coords.csv.
type CenterRow struct {
	Latitude  float64 `csv:"Latitude"`
	Longitude float64 `csv:"Longitude"`
}
