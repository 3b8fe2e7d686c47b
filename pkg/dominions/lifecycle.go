package dominions

import (
	"errors"
	"fmt"
)

// ErrInvalidLobby is returned for a lobby that could never be filled or started.
var ErrInvalidLobby = errors.New("invalid lobby")

// NewLobby validates and builds the initial state of a new server.
func NewLobby(era Era, playerCount int, owner, description string) (LobbyServer, error) {
	if !era.Valid() {
		return LobbyServer{}, fmt.Errorf("%w: unknown era %d", ErrInvalidLobby, int(era))
	}
	if playerCount <= 0 {
		return LobbyServer{}, fmt.Errorf("%w: player count must be positive, got %d", ErrInvalidLobby, playerCount)
	}
	if owner == "" {
		return LobbyServer{}, fmt.Errorf("%w: missing owner", ErrInvalidLobby)
	}
	return LobbyServer{Lobby: LobbyState{
		Era:         era,
		PlayerCount: playerCount,
		Owner:       owner,
		Description: description,
	}}, nil
}

// Start moves a lobby to the started state using a snapshot fetched from
// the game host at address. The lobby record is kept.
func Start(state GameServerState, address string, game GameData) (StartedFromLobby, error) {
	switch s := state.(type) {
	case StartedServer, StartedFromLobby:
		return StartedFromLobby{}, ErrAlreadyStarted
	case LobbyServer:
		if len(game.Nations) > s.Lobby.PlayerCount {
			return StartedFromLobby{}, &CapacityError{
				Kind:     ErrCapacityExceeded,
				Count:    len(game.Nations),
				Capacity: s.Lobby.PlayerCount,
			}
		}
		return StartedFromLobby{
			Started: StartedState{Address: address, LastSeenTurn: game.Turn},
			Lobby:   s.Lobby,
		}, nil
	default:
		panic(unknownState(state))
	}
}

// Register validates a new registration for player. Lobbies resolve against
// the era catalog and enforce capacity and nation uniqueness. Started
// servers resolve against game, which must then be non-nil, and accept any
// nation the game host has seen.
func Register(state GameServerState, registered []Registration, game *GameData, spec NationSpecifier, player Player) (Registration, error) {
	switch s := state.(type) {
	case LobbyServer:
		nation, err := registerInLobby(s.Lobby, registered, spec)
		if err != nil {
			return Registration{}, err
		}
		return Registration{Player: player, NationID: nation.ID}, nil
	case StartedServer, StartedFromLobby:
		if game == nil {
			return Registration{}, ErrMissingSnapshot
		}
		nd, err := ResolveGameNation(spec, *game)
		if err != nil {
			return Registration{}, err
		}
		return Registration{Player: player, NationID: nd.Nation.ID}, nil
	default:
		panic(unknownState(state))
	}
}

func registerInLobby(lobby LobbyState, registered []Registration, spec NationSpecifier) (Nation, error) {
	if len(registered) >= lobby.PlayerCount {
		return Nation{}, &CapacityError{Kind: ErrLobbyFull, Count: len(registered), Capacity: lobby.PlayerCount}
	}
	nation, err := ResolveLobbyNation(spec, lobby.Era)
	if err != nil {
		return Nation{}, err
	}
	for _, r := range registered {
		if r.NationID == nation.ID {
			return Nation{}, &NationTakenError{Nation: nation}
		}
	}
	return nation, nil
}

// AdvanceTurn records turn as the last seen turn of a started server. It
// reports false when state is a lobby or the turn is unchanged.
func AdvanceTurn(state GameServerState, turn int) (GameServerState, bool) {
	switch s := state.(type) {
	case LobbyServer:
		return s, false
	case StartedServer:
		if s.Started.LastSeenTurn == turn {
			return s, false
		}
		s.Started.LastSeenTurn = turn
		return s, true
	case StartedFromLobby:
		if s.Started.LastSeenTurn == turn {
			return s, false
		}
		s.Started.LastSeenTurn = turn
		return s, true
	default:
		panic(unknownState(state))
	}
}
