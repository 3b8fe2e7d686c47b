package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/freeeve/domtracker/internal/model"
	"github.com/freeeve/domtracker/pkg/dominions"
)

// RosterLine is a roster entry with its player's display name resolved.
type RosterLine struct {
	dominions.RosterEntry
	DisplayName string `json:"display_name,omitempty"`
}

// TimeRemaining is the turn timer split for display.
type TimeRemaining struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ServerDetails is everything needed to render a server's status.
type ServerDetails struct {
	Server      *model.GameServer    `json:"server"`
	OwnerName   string               `json:"owner_name,omitempty"`
	Description string               `json:"description,omitempty"`
	GameName    string               `json:"game_name,omitempty"`
	Turn        *int                 `json:"turn,omitempty"`
	Remaining   *TimeRemaining       `json:"time_remaining,omitempty"`
	Mode        dominions.RosterMode `json:"mode"`
	Roster      []RosterLine         `json:"roster"`
}

// Details merges a server's registrations with its live game and resolves
// every player's display name. Any lookup failure fails the whole call.
func (s *ServerService) Details(ctx context.Context, alias string) (*ServerDetails, error) {
	server, err := s.GetServer(ctx, alias)
	if err != nil {
		return nil, err
	}
	registered, err := s.players.PlayersWithNationIDs(ctx, alias)
	if err != nil {
		return nil, err
	}

	details := &ServerDetails{Server: server}
	state := server.State
	var game *dominions.GameData
	if started, ok := dominions.StartedOf(state); ok {
		g, err := s.fetch(ctx, started.Address)
		if err != nil {
			return nil, err
		}
		game = &g
		// Show the live phase even if the watcher has not recorded it yet.
		state, _ = dominions.AdvanceTurn(state, g.Turn)

		turn := g.Turn
		hours, minutes := g.TimeRemaining()
		details.GameName = g.GameName
		details.Turn = &turn
		details.Remaining = &TimeRemaining{Hours: hours, Minutes: minutes}
	}

	roster, err := dominions.Reconcile(state, registered, game)
	if err != nil {
		return nil, err
	}
	details.Mode = roster.Mode

	names := make(map[string]string)
	resolve := func(userID string) (string, error) {
		if name, ok := names[userID]; ok {
			return name, nil
		}
		name, err := s.names.DisplayName(ctx, userID)
		if err != nil {
			if !errors.Is(err, dominions.ErrIdentityResolutionFailed) {
				err = fmt.Errorf("%w: user %s: %w", dominions.ErrIdentityResolutionFailed, userID, err)
			}
			return "", err
		}
		names[userID] = name
		return name, nil
	}

	if lobby, ok := dominions.LobbyOf(state); ok {
		details.Description = lobby.Description
		if details.OwnerName, err = resolve(lobby.Owner); err != nil {
			return nil, err
		}
	}

	details.Roster = make([]RosterLine, 0, len(roster.Entries))
	for _, e := range roster.Entries {
		line := RosterLine{RosterEntry: e}
		if e.Player != nil {
			if line.DisplayName, err = resolve(e.Player.DiscordUserID); err != nil {
				return nil, err
			}
		}
		details.Roster = append(details.Roster, line)
	}
	return details, nil
}
