package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/internal/metrics"
	"github.com/freeeve/domtracker/internal/model"
	"github.com/freeeve/domtracker/internal/repository"
	"github.com/freeeve/domtracker/pkg/dominions"
)

var (
	ErrServerNotFound = errors.New("server not found")
	ErrInvalidAlias   = errors.New("alias must be 1-32 characters of a-z, 0-9, - or _")
	ErrNotOwner       = errors.New("only the lobby owner can do that")
	ErrNotRegistered  = errors.New("you are not registered on this server")
	ErrMissingAddress = errors.New("a game host address is required")
)

var aliasPattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// IdentityResolver turns Discord user ids into display names.
type IdentityResolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// ServerService drives the lifecycle of tracked game servers. Every
// mutation runs under the alias lock and commits with a version check.
type ServerService struct {
	servers repository.ServerRepository
	players repository.PlayerRepository
	source  dominions.GameDataSource
	names   IdentityResolver
	locker  repository.AliasLocker
	hub     Broadcaster
	metrics *metrics.Metrics
}

// NewServerService creates a ServerService. A nil locker falls back to a
// process-local one.
func NewServerService(servers repository.ServerRepository, players repository.PlayerRepository,
	source dominions.GameDataSource, names IdentityResolver, locker repository.AliasLocker) *ServerService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &ServerService{
		servers: servers,
		players: players,
		source:  source,
		names:   names,
		locker:  locker,
		hub:     NoopBroadcaster{},
	}
}

// SetBroadcaster sets the real-time event broadcaster.
func (s *ServerService) SetBroadcaster(b Broadcaster) {
	s.hub = b
}

// SetMetrics attaches Prometheus collectors.
func (s *ServerService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// CreateLobby opens a new lobby under alias, owned by ownerID.
func (s *ServerService) CreateLobby(ctx context.Context, alias string, era dominions.Era, playerCount int, ownerID, description string) (*model.GameServer, error) {
	if !aliasPattern.MatchString(alias) {
		return nil, ErrInvalidAlias
	}
	lobby, err := dominions.NewLobby(era, playerCount, ownerID, description)
	if err != nil {
		return nil, err
	}
	if err := s.players.InsertPlayer(ctx, dominions.Player{DiscordUserID: ownerID, TurnNotifications: true}); err != nil {
		return nil, err
	}
	server, err := s.servers.Create(ctx, alias, lobby)
	if err != nil {
		return nil, err
	}
	log.Info().Str("alias", alias).Str("era", era.String()).Int("players", playerCount).Str("owner", ownerID).Msg("Lobby created")
	return server, nil
}

// ListServers returns every tracked server.
func (s *ServerService) ListServers(ctx context.Context) ([]model.GameServer, error) {
	return s.servers.List(ctx)
}

// GetServer returns one server.
func (s *ServerService) GetServer(ctx context.Context, alias string) (*model.GameServer, error) {
	server, err := s.servers.FindByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, ErrServerNotFound
	}
	return server, nil
}

// Start attaches a lobby to the game host at address. Only the lobby
// owner may start it.
func (s *ServerService) Start(ctx context.Context, alias, address, userID string) (server *model.GameServer, err error) {
	if address == "" {
		return nil, ErrMissingAddress
	}
	defer func() {
		if !errors.Is(err, ErrServerNotFound) {
			s.metrics.ObserveStart(err)
		}
	}()

	unlock, err := s.locker.Lock(ctx, alias)
	if err != nil {
		return nil, err
	}
	defer unlock()

	server, err = s.GetServer(ctx, alias)
	if err != nil {
		return nil, err
	}
	lobby, ok := server.State.(dominions.LobbyServer)
	if !ok {
		return nil, dominions.ErrAlreadyStarted
	}
	if lobby.Lobby.Owner != userID {
		return nil, ErrNotOwner
	}

	game, err := s.fetch(ctx, address)
	if err != nil {
		return nil, err
	}
	started, err := dominions.Start(server.State, address, game)
	if err != nil {
		return nil, err
	}
	if err := s.servers.InsertStartedState(ctx, alias, started.Started, server.Version); err != nil {
		return nil, err
	}

	server.State = started
	server.Version++
	log.Info().Str("alias", alias).Str("address", address).Int("turn", game.Turn).Int("nations", len(game.Nations)).Msg("Server started")
	s.hub.BroadcastServerEvent(alias, EventServerStarted, map[string]any{
		"alias":     alias,
		"address":   address,
		"game_name": game.GameName,
		"turn":      game.Turn,
	})
	return server, nil
}

// Register claims the nation the specifier matches for userID.
func (s *ServerService) Register(ctx context.Context, alias, userID string, spec dominions.NationSpecifier) (dominions.Registration, error) {
	unlock, err := s.locker.Lock(ctx, alias)
	if err != nil {
		return dominions.Registration{}, err
	}
	defer unlock()

	server, err := s.GetServer(ctx, alias)
	if err != nil {
		return dominions.Registration{}, err
	}
	registered, err := s.players.PlayersWithNationIDs(ctx, alias)
	if err != nil {
		return dominions.Registration{}, err
	}

	var game *dominions.GameData
	if started, ok := dominions.StartedOf(server.State); ok {
		g, err := s.fetch(ctx, started.Address)
		if err != nil {
			return dominions.Registration{}, err
		}
		game = &g
	}

	player := dominions.Player{DiscordUserID: userID, TurnNotifications: true}
	if existing, err := s.players.FindPlayer(ctx, userID); err != nil {
		return dominions.Registration{}, err
	} else if existing != nil {
		player = *existing
	}

	reg, err := dominions.Register(server.State, registered, game, spec, player)
	if err != nil {
		return dominions.Registration{}, err
	}
	if err := s.players.InsertPlayer(ctx, player); err != nil {
		return dominions.Registration{}, err
	}
	if err := s.players.InsertServerPlayer(ctx, alias, userID, reg.NationID, server.Version); err != nil {
		return dominions.Registration{}, err
	}

	s.metrics.IncRegistrations(string(server.State.Kind()))
	log.Info().Str("alias", alias).Str("userId", userID).Uint32("nationId", reg.NationID).Msg("Player registered")
	s.hub.BroadcastServerEvent(alias, EventPlayerRegistered, map[string]any{
		"user_id":   userID,
		"nation_id": reg.NationID,
	})
	return reg, nil
}

// Unregister drops every nation userID holds on alias.
func (s *ServerService) Unregister(ctx context.Context, alias, userID string) error {
	unlock, err := s.locker.Lock(ctx, alias)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.GetServer(ctx, alias); err != nil {
		return err
	}
	removed, err := s.players.RemovePlayerFromGame(ctx, alias, userID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotRegistered
	}

	log.Info().Str("alias", alias).Str("userId", userID).Int64("removed", removed).Msg("Player unregistered")
	s.hub.BroadcastServerEvent(alias, EventPlayerUnregistered, map[string]any{"user_id": userID})
	return nil
}

// DeleteServer removes a lobby. Started servers are kept.
func (s *ServerService) DeleteServer(ctx context.Context, alias, userID string) error {
	unlock, err := s.locker.Lock(ctx, alias)
	if err != nil {
		return err
	}
	defer unlock()

	server, err := s.GetServer(ctx, alias)
	if err != nil {
		return err
	}
	lobby, ok := server.State.(dominions.LobbyServer)
	if !ok {
		return dominions.ErrAlreadyStarted
	}
	if lobby.Lobby.Owner != userID {
		return ErrNotOwner
	}
	if err := s.servers.Delete(ctx, alias, server.Version); err != nil {
		return err
	}
	log.Info().Str("alias", alias).Str("owner", userID).Msg("Lobby deleted")
	return nil
}

// Snapshot fetches the live game data of a started server.
func (s *ServerService) Snapshot(ctx context.Context, alias string) (dominions.GameData, error) {
	server, err := s.GetServer(ctx, alias)
	if err != nil {
		return dominions.GameData{}, err
	}
	started, ok := dominions.StartedOf(server.State)
	if !ok {
		return dominions.GameData{}, dominions.ErrNotStarted
	}
	return s.fetch(ctx, started.Address)
}

// Player returns a player's preferences. Unknown players get the defaults.
func (s *ServerService) Player(ctx context.Context, userID string) (*dominions.Player, error) {
	p, err := s.players.FindPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &dominions.Player{DiscordUserID: userID, TurnNotifications: true}, nil
	}
	return p, nil
}

// EnsurePlayer records a signed-in user with default preferences.
func (s *ServerService) EnsurePlayer(ctx context.Context, userID string) error {
	return s.players.InsertPlayer(ctx, dominions.Player{DiscordUserID: userID, TurnNotifications: true})
}

// SetTurnNotifications turns new-turn notifications on or off for userID.
func (s *ServerService) SetTurnNotifications(ctx context.Context, userID string, enabled bool) (*dominions.Player, error) {
	if err := s.players.SetTurnNotifications(ctx, userID, enabled); err != nil {
		return nil, err
	}
	return &dominions.Player{DiscordUserID: userID, TurnNotifications: enabled}, nil
}

// ObserveTurn fetches the live turn of a started server and records it
// when it changed. It reports the snapshot and whether the turn advanced.
func (s *ServerService) ObserveTurn(ctx context.Context, alias string) (dominions.GameData, bool, error) {
	unlock, err := s.locker.Lock(ctx, alias)
	if err != nil {
		return dominions.GameData{}, false, err
	}
	defer unlock()

	server, err := s.GetServer(ctx, alias)
	if err != nil {
		return dominions.GameData{}, false, err
	}
	started, ok := dominions.StartedOf(server.State)
	if !ok {
		return dominions.GameData{}, false, dominions.ErrNotStarted
	}
	game, err := s.fetch(ctx, started.Address)
	if err != nil {
		return dominions.GameData{}, false, err
	}

	if _, advanced := dominions.AdvanceTurn(server.State, game.Turn); !advanced {
		return game, false, nil
	}
	if err := s.servers.SaveTurn(ctx, alias, game.Turn, server.Version); err != nil {
		return dominions.GameData{}, false, err
	}
	s.metrics.IncTurnAdvances()
	log.Info().Str("alias", alias).Int("from", started.LastSeenTurn).Int("to", game.Turn).Msg("Turn advanced")
	return game, true, nil
}

func (s *ServerService) fetch(ctx context.Context, address string) (dominions.GameData, error) {
	start := time.Now()
	game, err := s.source.GameData(ctx, address)
	s.metrics.ObserveFetch(err, time.Since(start))
	if err != nil {
		log.Warn().Err(err).Str("address", address).Msg("Game host fetch failed")
		return dominions.GameData{}, fmt.Errorf("%w: %s: %w", dominions.ErrRemoteFetchFailed, address, err)
	}
	return game, nil
}
