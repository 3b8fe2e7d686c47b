package model

import (
	"encoding/json"
	"time"

	"github.com/freeeve/domtracker/pkg/dominions"
)

// GameServer is one tracked game server and its lifecycle record.
// Version increases on every change to the server or its registrations.
type GameServer struct {
	Alias     string
	Version   int64
	State     dominions.GameServerState
	CreatedAt time.Time
	UpdatedAt time.Time
}

type gameServerJSON struct {
	Alias     string                  `json:"alias"`
	Version   int64                   `json:"version"`
	Kind      dominions.StateKind     `json:"kind"`
	Lobby     *dominions.LobbyState   `json:"lobby,omitempty"`
	Started   *dominions.StartedState `json:"started,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// MarshalJSON flattens the lifecycle state into its kind and records.
func (g GameServer) MarshalJSON() ([]byte, error) {
	out := gameServerJSON{
		Alias:     g.Alias,
		Version:   g.Version,
		Kind:      g.State.Kind(),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
	if lobby, ok := dominions.LobbyOf(g.State); ok {
		out.Lobby = &lobby
	}
	if started, ok := dominions.StartedOf(g.State); ok {
		out.Started = &started
	}
	return json.Marshal(out)
}
