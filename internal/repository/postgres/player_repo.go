package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/domtracker/pkg/dominions"
)

// PlayerRepo handles players and server_players database operations.
type PlayerRepo struct {
	db *sql.DB
}

// NewPlayerRepo creates a PlayerRepo.
func NewPlayerRepo(db *sql.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// InsertPlayer creates a player if they do not exist yet. Existing
// preferences are left alone.
func (r *PlayerRepo) InsertPlayer(ctx context.Context, player dominions.Player) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO players (discord_user_id, turn_notifications) VALUES ($1, $2)
		 ON CONFLICT (discord_user_id) DO NOTHING`,
		player.DiscordUserID, player.TurnNotifications,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// FindPlayer returns a player by Discord user id, or nil if unknown.
func (r *PlayerRepo) FindPlayer(ctx context.Context, userID string) (*dominions.Player, error) {
	var p dominions.Player
	err := r.db.QueryRowContext(ctx,
		`SELECT discord_user_id, turn_notifications FROM players WHERE discord_user_id = $1`, userID,
	).Scan(&p.DiscordUserID, &p.TurnNotifications)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find player: %w", err)
	}
	return &p, nil
}

// SetTurnNotifications updates a player's turn notification preference.
func (r *PlayerRepo) SetTurnNotifications(ctx context.Context, userID string, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO players (discord_user_id, turn_notifications) VALUES ($1, $2)
		 ON CONFLICT (discord_user_id) DO UPDATE SET turn_notifications = EXCLUDED.turn_notifications`,
		userID, enabled,
	)
	if err != nil {
		return fmt.Errorf("set turn notifications: %w", err)
	}
	return nil
}

// PlayersWithNationIDs returns a server's registrations in signup order.
func (r *PlayerRepo) PlayersWithNationIDs(ctx context.Context, alias string) ([]dominions.Registration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.discord_user_id, p.turn_notifications, sp.nation_id
		 FROM server_players sp JOIN players p ON p.discord_user_id = sp.discord_user_id
		 WHERE sp.server_alias = $1
		 ORDER BY sp.id`,
		alias,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []dominions.Registration
	for rows.Next() {
		var reg dominions.Registration
		var nationID int64
		if err := rows.Scan(&reg.Player.DiscordUserID, &reg.Player.TurnNotifications, &nationID); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.NationID = uint32(nationID)
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// InsertServerPlayer registers a player for a nation, provided the server
// is still at expectedVersion.
func (r *PlayerRepo) InsertServerPlayer(ctx context.Context, alias, userID string, nationID uint32, expectedVersion int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := bumpVersion(ctx, tx, alias, expectedVersion); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO server_players (server_alias, discord_user_id, nation_id) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		alias, userID, int64(nationID),
	)
	if err != nil {
		return fmt.Errorf("insert server player: %w", err)
	}

	return tx.Commit()
}

// RemovePlayerFromGame drops every registration of a player on a server
// and returns how many were removed.
func (r *PlayerRepo) RemovePlayerFromGame(ctx context.Context, alias, userID string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM server_players WHERE server_alias = $1 AND discord_user_id = $2`,
		alias, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("remove server player: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if removed > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE game_servers SET version = version + 1, updated_at = now() WHERE alias = $1`, alias)
		if err != nil {
			return 0, fmt.Errorf("bump version: %w", err)
		}
	}

	return removed, tx.Commit()
}
