package here_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotel_weather/internal/adapters/here"
	"hotel_weather/internal/domain"
)

func newServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/revgeocode" || r.URL.Query().Get("apiKey") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("at") != "59.941263,30.350687" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

var stPete = domain.Coord{Lat: 59.941263, Lon: 30.350687}

func TestReverse_Label(t *testing.T) {
	ts := newServer(t, `{"items":[{"title":"Shpalernaya 34","address":{"label":"Shpalernaya Ulitsa 34, Saint Petersburg, Russia"}}]}`)
	c, err := here.New(ts.URL, "k", "en-US", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := c.Reverse(context.Background(), stPete)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "Shpalernaya Ulitsa 34, Saint Petersburg, Russia" {
		t.Fatalf("unexpected address %q", got)
	}
}

func TestReverse_NoItemsIsNotFound(t *testing.T) {
	ts := newServer(t, `{"items":[]}`)
	c, _ := here.New(ts.URL, "k", "", nil)
	_, err := c.Reverse(context.Background(), stPete)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReverse_MalformedIsParseError(t *testing.T) {
	ts := newServer(t, `{"error":"oops"}`)
	c, _ := here.New(ts.URL, "k", "", nil)
	_, err := c.Reverse(context.Background(), stPete)
	var pe *domain.ParseError
	if !errors.As(err, &pe) || pe.Field != "items" {
		t.Fatalf("expected ParseError on items, got %v", err)
	}
}

func TestReverse_Unauthorized(t *testing.T) {
	ts := newServer(t, `{}`)
	c, _ := here.New(ts.URL, "wrong", "", nil)
	_, err := c.Reverse(context.Background(), stPete)
	if !errors.Is(err, domain.ErrUnauthorized) || domain.IsTransient(err) {
		t.Fatalf("expected permanent ErrUnauthorized, got %v", err)
	}
}
