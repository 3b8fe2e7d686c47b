package dominions

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                 = errors.New("nation not found")
	ErrAmbiguous                = errors.New("ambiguous nation name")
	ErrAlreadyStarted           = errors.New("game already started")
	ErrNotStarted               = errors.New("game has not started")
	ErrLobbyFull                = errors.New("lobby already full")
	ErrNationTaken              = errors.New("nation already taken")
	ErrCapacityExceeded         = errors.New("game has more players than the lobby")
	ErrRemoteFetchFailed        = errors.New("could not fetch game data")
	ErrIdentityResolutionFailed = errors.New("could not resolve user")
	ErrMissingSnapshot          = errors.New("started server needs a game snapshot")
)

// Scope names where a nation specifier was resolved.
type Scope string

const (
	ScopeLobby Scope = "lobby"
	ScopeGame  Scope = "game"
)

// NationError reports a specifier that matched no nation or several.
// Kind is ErrNotFound or ErrAmbiguous.
type NationError struct {
	Kind      error
	Specifier NationSpecifier
	Scope     Scope
	Era       Era  // lobby scope only
	PreGame   bool // game scope only: the host is still in pretender upload
}

func (e *NationError) Error() string {
	if errors.Is(e.Kind, ErrAmbiguous) {
		return fmt.Sprintf("ambiguous nation name: %s", e.Specifier)
	}
	switch {
	case e.Specifier.IsID() && e.Scope == ScopeLobby:
		return fmt.Sprintf("could not find nation with id %d in era %s", e.Specifier.ID(), e.Era)
	case e.Specifier.IsID():
		return fmt.Sprintf("could not find a nation with id %d", e.Specifier.ID())
	case e.PreGame:
		return fmt.Sprintf("could not find nation starting with %s; make sure you've uploaded a pretender first", e.Specifier)
	default:
		return fmt.Sprintf("could not find nation starting with %s", e.Specifier)
	}
}

func (e *NationError) Unwrap() error { return e.Kind }

// CapacityError reports a count that does not fit a lobby.
// Kind is ErrLobbyFull or ErrCapacityExceeded.
type CapacityError struct {
	Kind     error
	Count    int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s (%d/%d)", e.Kind, e.Count, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return e.Kind }

// NationTakenError reports a lobby nation that is already registered.
type NationTakenError struct {
	Nation Nation
}

func (e *NationTakenError) Error() string {
	return fmt.Sprintf("nation %s already exists in lobby", e.Nation.Name)
}

func (e *NationTakenError) Unwrap() error { return ErrNationTaken }

func unknownState(state GameServerState) string {
	return fmt.Sprintf("dominions: unknown server state %T", state)
}
