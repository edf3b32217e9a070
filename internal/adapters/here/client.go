// Package here reverse-geocodes coordinates with the HERE Geocoding & Search API.
package here

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"hotel_weather/internal/adapters/restclient"
	"hotel_weather/internal/domain"
)

const service = "here"

type Client struct {
	base string
	key  string
	lang string
	rc   *restclient.Client
}

func New(base, key, lang string, rc *restclient.Client) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("here: API key is required")
	}
	if rc == nil {
		rc = restclient.New(service, restclient.Options{MaxRetries: 2})
	}
	return &Client{base: base, key: key, lang: lang, rc: rc}, nil
}

type revgeocodeResponse struct {
	Items *[]struct {
		Title   string `json:"title"`
		Address struct {
			Label string `json:"label"`
		} `json:"address"`
	} `json:"items"`
}

// Reverse returns the label of the closest address, or domain.ErrNotFound.
func (c *Client) Reverse(ctx context.Context, co domain.Coord) (string, error) {
	q := url.Values{}
	q.Set("at", strconv.FormatFloat(co.Lat, 'f', -1, 64)+","+strconv.FormatFloat(co.Lon, 'f', -1, 64))
	q.Set("apiKey", c.key)
	if c.lang != "" {
		q.Set("lang", c.lang)
	}
	body, err := c.rc.Get(ctx, "revgeocode", c.base+"/revgeocode?"+q.Encode())
	if err != nil {
		return "", wrap(co, err)
	}

	var r revgeocodeResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", wrap(co, &domain.ParseError{Shape: "revgeocode", Field: "$", Err: err})
	}
	if r.Items == nil {
		return "", wrap(co, &domain.ParseError{Shape: "revgeocode", Field: "items"})
	}
	for _, it := range *r.Items {
		if l := strings.TrimSpace(it.Address.Label); l != "" {
			return l, nil
		}
		if t := strings.TrimSpace(it.Title); t != "" {
			return t, nil
		}
	}
	return "", wrap(co, domain.ErrNotFound)
}

func wrap(co domain.Coord, err error) error {
	return &domain.FetchError{
		Service:   service,
		Op:        "reverse",
		Coord:     co,
		Transient: domain.IsTransient(err),
		Err:       err,
	}
}
