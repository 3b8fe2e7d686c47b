package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/internal/repository"
)

// TurnWatcher polls started servers for new turns, records them and
// notifies players who opted in.
type TurnWatcher struct {
	svc      *ServerService
	ledger   repository.TurnLedger
	interval time.Duration
}

// NewTurnWatcher creates a TurnWatcher. A nil ledger announces every
// advance this process observes.
func NewTurnWatcher(svc *ServerService, ledger repository.TurnLedger, interval time.Duration) *TurnWatcher {
	return &TurnWatcher{svc: svc, ledger: ledger, interval: interval}
}

// Start polls until ctx is done.
func (w *TurnWatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", w.interval).Msg("Turn watcher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Turn watcher stopped")
			return
		case <-ticker.C:
			w.CheckAll(ctx)
		}
	}
}

// CheckAll checks every started server once. Failures are logged and do
// not stop the sweep.
func (w *TurnWatcher) CheckAll(ctx context.Context) {
	servers, err := w.svc.servers.ListStarted(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list started servers")
		return
	}
	for _, server := range servers {
		if ctx.Err() != nil {
			return
		}
		if err := w.check(ctx, server.Alias); err != nil {
			log.Error().Err(err).Str("alias", server.Alias).Msg("Turn check failed")
		}
	}
}

func (w *TurnWatcher) check(ctx context.Context, alias string) error {
	game, advanced, err := w.svc.ObserveTurn(ctx, alias)
	if err != nil || !advanced {
		return err
	}

	if w.ledger != nil {
		first, err := w.ledger.MarkAnnounced(ctx, alias, game.Turn)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
	}

	hours, minutes := game.TimeRemaining()
	event := map[string]any{
		"alias":     alias,
		"game_name": game.GameName,
		"turn":      game.Turn,
		"hours":     hours,
		"minutes":   minutes,
	}
	w.svc.hub.BroadcastServerEvent(alias, EventTurnAdvanced, event)

	registered, err := w.svc.players.PlayersWithNationIDs(ctx, alias)
	if err != nil {
		return err
	}
	notified := make(map[string]bool)
	for _, r := range registered {
		id := r.Player.DiscordUserID
		if !r.Player.TurnNotifications || notified[id] {
			continue
		}
		notified[id] = true
		w.svc.hub.NotifyUser(id, EventTurnNotification, event)
	}
	log.Info().Str("alias", alias).Int("turn", game.Turn).Int("notified", len(notified)).Msg("Turn announced")
	return nil
}
