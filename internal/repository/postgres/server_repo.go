package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/freeeve/domtracker/internal/model"
	"github.com/freeeve/domtracker/internal/repository"
	"github.com/freeeve/domtracker/pkg/dominions"
)

const serverColumns = `alias, version, kind, era, player_count, owner_id, description, address, last_seen_turn, created_at, updated_at`

// ServerRepo handles game_servers database operations.
type ServerRepo struct {
	db *sql.DB
}

// NewServerRepo creates a ServerRepo.
func NewServerRepo(db *sql.DB) *ServerRepo {
	return &ServerRepo{db: db}
}

// Create inserts a new server in the lobby state.
func (r *ServerRepo) Create(ctx context.Context, alias string, lobby dominions.LobbyServer) (*model.GameServer, error) {
	var description sql.NullString
	if lobby.Lobby.Description != "" {
		description = sql.NullString{String: lobby.Lobby.Description, Valid: true}
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO game_servers (alias, kind, era, player_count, owner_id, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+serverColumns,
		alias, string(dominions.KindLobby), int(lobby.Lobby.Era), lobby.Lobby.PlayerCount, lobby.Lobby.Owner, description,
	)
	g, err := scanServer(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, repository.ErrAliasTaken
		}
		return nil, fmt.Errorf("create server: %w", err)
	}
	return g, nil
}

// FindByAlias returns a server by alias, or nil if there is none.
func (r *ServerRepo) FindByAlias(ctx context.Context, alias string) (*model.GameServer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+serverColumns+` FROM game_servers WHERE alias = $1`, alias)
	g, err := scanServer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find server: %w", err)
	}
	return g, nil
}

// List returns every server, newest first.
func (r *ServerRepo) List(ctx context.Context) ([]model.GameServer, error) {
	return r.list(ctx, `SELECT `+serverColumns+` FROM game_servers ORDER BY created_at DESC LIMIT 100`)
}

// ListStarted returns every started server, oldest first.
func (r *ServerRepo) ListStarted(ctx context.Context) ([]model.GameServer, error) {
	return r.list(ctx, `SELECT `+serverColumns+` FROM game_servers WHERE kind <> 'lobby' ORDER BY created_at`)
}

func (r *ServerRepo) list(ctx context.Context, query string) ([]model.GameServer, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	defer rows.Close()

	var servers []model.GameServer
	for rows.Next() {
		g, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan server: %w", err)
		}
		servers = append(servers, *g)
	}
	return servers, rows.Err()
}

// InsertStartedState records that a lobby was started. The lobby columns are kept.
func (r *ServerRepo) InsertStartedState(ctx context.Context, alias string, started dominions.StartedState, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE game_servers
		 SET kind = $1, address = $2, last_seen_turn = $3, version = version + 1, updated_at = now()
		 WHERE alias = $4 AND version = $5 AND kind = 'lobby'`,
		string(dominions.KindStartedFromLobby), started.Address, started.LastSeenTurn, alias, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("insert started state: %w", err)
	}
	return expectOneRow(res)
}

// SaveTurn records the last turn observed on a started server.
func (r *ServerRepo) SaveTurn(ctx context.Context, alias string, lastSeenTurn int, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE game_servers
		 SET last_seen_turn = $1, version = version + 1, updated_at = now()
		 WHERE alias = $2 AND version = $3 AND kind <> 'lobby'`,
		lastSeenTurn, alias, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes a server and its registrations.
func (r *ServerRepo) Delete(ctx context.Context, alias string, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM game_servers WHERE alias = $1 AND version = $2`, alias, expectedVersion)
	if err != nil {
		return fmt.Errorf("delete server: %w", err)
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanServer(row rowScanner) (*model.GameServer, error) {
	var (
		g           model.GameServer
		kind        string
		era         sql.NullInt64
		playerCount sql.NullInt64
		owner       sql.NullString
		description sql.NullString
		address     sql.NullString
		lastSeen    sql.NullInt64
	)
	if err := row.Scan(&g.Alias, &g.Version, &kind, &era, &playerCount, &owner, &description,
		&address, &lastSeen, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}

	lobby := dominions.LobbyState{
		Era:         dominions.Era(era.Int64),
		PlayerCount: int(playerCount.Int64),
		Owner:       owner.String,
		Description: description.String,
	}
	started := dominions.StartedState{Address: address.String, LastSeenTurn: int(lastSeen.Int64)}

	switch dominions.StateKind(kind) {
	case dominions.KindLobby:
		g.State = dominions.LobbyServer{Lobby: lobby}
	case dominions.KindStarted:
		g.State = dominions.StartedServer{Started: started}
	case dominions.KindStartedFromLobby:
		g.State = dominions.StartedFromLobby{Started: started, Lobby: lobby}
	default:
		return nil, fmt.Errorf("server %s has unknown kind %q", g.Alias, kind)
	}
	return &g, nil
}

// bumpVersion advances a server's version inside tx if it still matches expected.
func bumpVersion(ctx context.Context, tx *sql.Tx, alias string, expected int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE game_servers SET version = version + 1, updated_at = now()
		 WHERE alias = $1 AND version = $2`,
		alias, expected,
	)
	if err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return repository.ErrVersionConflict
	}
	return nil
}
