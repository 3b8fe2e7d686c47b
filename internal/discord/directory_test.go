package discord

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/freeeve/domtracker/pkg/dominions"
)

type mapCache struct {
	names map[string]string
}

func (c *mapCache) GetName(_ context.Context, userID string) (string, bool, error) {
	name, ok := c.names[userID]
	return name, ok, nil
}

func (c *mapCache) SetName(_ context.Context, userID, name string) error {
	c.names[userID] = name
	return nil
}

func newDiscord(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bot secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/users/1":
			w.Write([]byte(`{"id":"1","username":"alice","global_name":"Alice A."}`))
		case "/users/2":
			w.Write([]byte(`{"id":"2","username":"bob","global_name":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Unknown User"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDisplayName(t *testing.T) {
	var calls atomic.Int32
	srv := newDiscord(t, &calls)
	d := NewUserDirectory(srv.URL, "secret", nil)

	name, err := d.DisplayName(context.Background(), "1")
	if err != nil {
		t.Fatalf("display name: %v", err)
	}
	if name != "Alice A." {
		t.Errorf("expected global name, got %q", name)
	}

	name, err = d.DisplayName(context.Background(), "2")
	if err != nil {
		t.Fatalf("display name: %v", err)
	}
	if name != "bob" {
		t.Errorf("expected username fallback, got %q", name)
	}
}

func TestDisplayNameCached(t *testing.T) {
	var calls atomic.Int32
	srv := newDiscord(t, &calls)
	cache := &mapCache{names: map[string]string{}}
	d := NewUserDirectory(srv.URL, "secret", cache)

	for range 3 {
		if _, err := d.DisplayName(context.Background(), "1"); err != nil {
			t.Fatalf("display name: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls.Load())
	}
	if cache.names["1"] != "Alice A." {
		t.Fatalf("expected cached name, got %q", cache.names["1"])
	}
}

func TestDisplayNameUnknownUser(t *testing.T) {
	var calls atomic.Int32
	srv := newDiscord(t, &calls)
	d := NewUserDirectory(srv.URL, "secret", nil)

	_, err := d.DisplayName(context.Background(), "404")
	if !errors.Is(err, dominions.ErrIdentityResolutionFailed) {
		t.Fatalf("expected ErrIdentityResolutionFailed, got %v", err)
	}
}

func TestDisplayNameBadToken(t *testing.T) {
	var calls atomic.Int32
	srv := newDiscord(t, &calls)
	d := NewUserDirectory(srv.URL, "wrong", nil)

	if _, err := d.DisplayName(context.Background(), "1"); !errors.Is(err, dominions.ErrIdentityResolutionFailed) {
		t.Fatalf("expected ErrIdentityResolutionFailed, got %v", err)
	}
}
