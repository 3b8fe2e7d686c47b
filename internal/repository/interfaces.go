package repository

import (
	"context"
	"errors"

	"github.com/freeeve/domtracker/internal/model"
	"github.com/freeeve/domtracker/pkg/dominions"
)

// ErrVersionConflict is returned when a server changed since it was read.
var ErrVersionConflict = errors.New("server was modified concurrently")

// ErrAliasTaken is returned when creating a server under an existing alias.
var ErrAliasTaken = errors.New("alias already in use")

// ServerRepository defines game server lifecycle operations. Mutations take
// the version the caller read and fail with ErrVersionConflict if it moved.
type ServerRepository interface {
	Create(ctx context.Context, alias string, lobby dominions.LobbyServer) (*model.GameServer, error)
	FindByAlias(ctx context.Context, alias string) (*model.GameServer, error)
	List(ctx context.Context) ([]model.GameServer, error)
	ListStarted(ctx context.Context) ([]model.GameServer, error)
	InsertStartedState(ctx context.Context, alias string, started dominions.StartedState, expectedVersion int64) error
	SaveTurn(ctx context.Context, alias string, lastSeenTurn int, expectedVersion int64) error
	Delete(ctx context.Context, alias string, expectedVersion int64) error
}

// PlayerRepository defines player and registration operations.
type PlayerRepository interface {
	InsertPlayer(ctx context.Context, player dominions.Player) error
	FindPlayer(ctx context.Context, userID string) (*dominions.Player, error)
	SetTurnNotifications(ctx context.Context, userID string, enabled bool) error
	PlayersWithNationIDs(ctx context.Context, alias string) ([]dominions.Registration, error)
	InsertServerPlayer(ctx context.Context, alias, userID string, nationID uint32, expectedVersion int64) error
	RemovePlayerFromGame(ctx context.Context, alias, userID string) (int64, error)
}

// AliasLocker serializes mutations of one server across processes.
type AliasLocker interface {
	Lock(ctx context.Context, alias string) (unlock func(), err error)
}

// NameCache caches resolved display names (Redis).
type NameCache interface {
	GetName(ctx context.Context, userID string) (name string, ok bool, err error)
	SetName(ctx context.Context, userID, name string) error
}

// TurnLedger records which turns have been announced (Redis).
type TurnLedger interface {
	MarkAnnounced(ctx context.Context, alias string, turn int) (first bool, err error)
}
