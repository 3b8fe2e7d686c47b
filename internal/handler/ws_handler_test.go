package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/freeeve/domtracker/internal/model"
	"github.com/freeeve/domtracker/internal/service"
	"github.com/freeeve/domtracker/pkg/dominions"
)

type lookupFunc func(ctx context.Context, alias string) (*model.GameServer, error)

func (f lookupFunc) GetServer(ctx context.Context, alias string) (*model.GameServer, error) {
	return f(ctx, alias)
}

func knownServers(t *testing.T, aliases ...string) ServerLookup {
	t.Helper()
	lobby, err := dominions.NewLobby(dominions.EraMiddle, 4, "owner", "")
	if err != nil {
		t.Fatalf("new lobby: %v", err)
	}
	known := make(map[string]bool)
	for _, a := range aliases {
		known[a] = true
	}
	return lookupFunc(func(_ context.Context, alias string) (*model.GameServer, error) {
		if !known[alias] {
			return nil, service.ErrServerNotFound
		}
		return &model.GameServer{Alias: alias, Version: 1, State: lobby}, nil
	})
}

func errorText(t *testing.T, event WSEvent) string {
	t.Helper()
	data, ok := event.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected error payload, got %#v", event.Data)
	}
	text, _ := data["error"].(string)
	return text
}

func TestSubscribeKnownServer(t *testing.T) {
	hub := NewHub(nil)
	h := NewWSHandler(hub, nil, knownServers(t, "fri"))
	c := newTestConn("user-1")
	hub.Register(c)

	h.handleClientMessage(c, ClientMessage{Action: "subscribe", Alias: "fri"})

	event := receive(t, c)
	if event.Type != "subscribed" || event.Alias != "fri" {
		t.Fatalf("expected subscribed to fri, got %+v", event)
	}
	data, ok := event.Data.(map[string]any)
	if !ok || data["alias"] != "fri" {
		t.Fatalf("expected the server in the reply, got %#v", event.Data)
	}
	if hub.SubscriberCount("fri") != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount("fri"))
	}
}

func TestSubscribeUnknownServer(t *testing.T) {
	hub := NewHub(nil)
	h := NewWSHandler(hub, nil, knownServers(t, "fri"))
	c := newTestConn("user-1")
	hub.Register(c)

	h.handleClientMessage(c, ClientMessage{Action: "subscribe", Alias: "nope"})

	event := receive(t, c)
	if event.Type != "error" || event.Alias != "nope" {
		t.Fatalf("expected an error for nope, got %+v", event)
	}
	if got := errorText(t, event); got != service.ErrServerNotFound.Error() {
		t.Errorf("unexpected error text %q", got)
	}
	if hub.SubscriberCount("nope") != 0 {
		t.Fatal("unknown alias must not get a subscriber")
	}
}

func TestSubscribeLookupFailureHidesDetails(t *testing.T) {
	hub := NewHub(nil)
	failing := lookupFunc(func(context.Context, string) (*model.GameServer, error) {
		return nil, errors.New("connection refused")
	})
	h := NewWSHandler(hub, nil, failing)
	c := newTestConn("user-1")
	hub.Register(c)

	h.handleClientMessage(c, ClientMessage{Action: "subscribe", Alias: "fri"})

	event := receive(t, c)
	if got := errorText(t, event); got != "internal error" {
		t.Errorf("expected internal error, got %q", got)
	}
	if hub.SubscriberCount("fri") != 0 {
		t.Fatal("failed lookup must not subscribe")
	}
}

func TestUnsubscribeAndBadMessages(t *testing.T) {
	hub := NewHub(nil)
	h := NewWSHandler(hub, nil, knownServers(t, "fri"))
	c := newTestConn("user-1")
	hub.Register(c)

	h.handleClientMessage(c, ClientMessage{Action: "subscribe", Alias: "fri"})
	receive(t, c)

	h.handleClientMessage(c, ClientMessage{Action: "unsubscribe", Alias: "fri"})
	if event := receive(t, c); event.Type != "unsubscribed" {
		t.Fatalf("expected unsubscribed, got %+v", event)
	}
	if hub.SubscriberCount("fri") != 0 {
		t.Fatal("expected no subscribers after unsubscribe")
	}

	h.handleClientMessage(c, ClientMessage{Action: "subscribe"})
	if got := errorText(t, receive(t, c)); got != "alias is required" {
		t.Errorf("unexpected error text %q", got)
	}

	h.handleClientMessage(c, ClientMessage{Action: "watch", Alias: "fri"})
	if got := errorText(t, receive(t, c)); got != "unknown action watch" {
		t.Errorf("unexpected error text %q", got)
	}
	expectNothing(t, c)
}

func TestReplyDropsWhenBufferFull(t *testing.T) {
	h := NewWSHandler(NewHub(nil), nil, knownServers(t))
	c := &WSConn{userID: "user-1", send: make(chan []byte, 1)}

	h.reply(c, WSEvent{Type: "connected"})
	h.reply(c, WSEvent{Type: "connected"})

	if len(c.send) != 1 {
		t.Fatalf("expected the second reply to be dropped, buffer holds %d", len(c.send))
	}
}
