package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/freeeve/domtracker/internal/model"
	"github.com/freeeve/domtracker/internal/repository"
	"github.com/freeeve/domtracker/pkg/dominions"
)

type mockServerRepo struct {
	servers map[string]*model.GameServer
}

func newMockServerRepo() *mockServerRepo {
	return &mockServerRepo{servers: make(map[string]*model.GameServer)}
}

func (m *mockServerRepo) Create(_ context.Context, alias string, lobby dominions.LobbyServer) (*model.GameServer, error) {
	if _, ok := m.servers[alias]; ok {
		return nil, repository.ErrAliasTaken
	}
	g := &model.GameServer{Alias: alias, Version: 1, State: lobby, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.servers[alias] = g
	cp := *g
	return &cp, nil
}

func (m *mockServerRepo) FindByAlias(_ context.Context, alias string) (*model.GameServer, error) {
	g, ok := m.servers[alias]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *mockServerRepo) List(_ context.Context) ([]model.GameServer, error) {
	var result []model.GameServer
	for _, g := range m.servers {
		result = append(result, *g)
	}
	return result, nil
}

func (m *mockServerRepo) ListStarted(_ context.Context) ([]model.GameServer, error) {
	var result []model.GameServer
	for _, g := range m.servers {
		if _, ok := dominions.StartedOf(g.State); ok {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockServerRepo) InsertStartedState(_ context.Context, alias string, started dominions.StartedState, expectedVersion int64) error {
	g, ok := m.servers[alias]
	if !ok || g.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	lobby, ok := g.State.(dominions.LobbyServer)
	if !ok {
		return repository.ErrVersionConflict
	}
	g.State = dominions.StartedFromLobby{Started: started, Lobby: lobby.Lobby}
	g.Version++
	return nil
}

func (m *mockServerRepo) SaveTurn(_ context.Context, alias string, lastSeenTurn int, expectedVersion int64) error {
	g, ok := m.servers[alias]
	if !ok || g.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	next, advanced := dominions.AdvanceTurn(g.State, lastSeenTurn)
	if !advanced {
		return repository.ErrVersionConflict
	}
	g.State = next
	g.Version++
	return nil
}

func (m *mockServerRepo) Delete(_ context.Context, alias string, expectedVersion int64) error {
	g, ok := m.servers[alias]
	if !ok || g.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	delete(m.servers, alias)
	return nil
}

// bump mimics another writer changing the server.
func (m *mockServerRepo) bump(alias string) {
	m.servers[alias].Version++
}

type serverPlayer struct {
	userID   string
	nationID uint32
}

type mockPlayerRepo struct {
	servers *mockServerRepo
	players map[string]dominions.Player
	regs    map[string][]serverPlayer
}

func newMockPlayerRepo(servers *mockServerRepo) *mockPlayerRepo {
	return &mockPlayerRepo{
		servers: servers,
		players: make(map[string]dominions.Player),
		regs:    make(map[string][]serverPlayer),
	}
}

func (m *mockPlayerRepo) InsertPlayer(_ context.Context, player dominions.Player) error {
	if _, ok := m.players[player.DiscordUserID]; !ok {
		m.players[player.DiscordUserID] = player
	}
	return nil
}

func (m *mockPlayerRepo) FindPlayer(_ context.Context, userID string) (*dominions.Player, error) {
	p, ok := m.players[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockPlayerRepo) SetTurnNotifications(_ context.Context, userID string, enabled bool) error {
	m.players[userID] = dominions.Player{DiscordUserID: userID, TurnNotifications: enabled}
	return nil
}

func (m *mockPlayerRepo) PlayersWithNationIDs(_ context.Context, alias string) ([]dominions.Registration, error) {
	var result []dominions.Registration
	for _, sp := range m.regs[alias] {
		result = append(result, dominions.Registration{Player: m.players[sp.userID], NationID: sp.nationID})
	}
	return result, nil
}

func (m *mockPlayerRepo) InsertServerPlayer(_ context.Context, alias, userID string, nationID uint32, expectedVersion int64) error {
	g, ok := m.servers.servers[alias]
	if !ok || g.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	g.Version++
	for _, sp := range m.regs[alias] {
		if sp.userID == userID && sp.nationID == nationID {
			return nil
		}
	}
	m.regs[alias] = append(m.regs[alias], serverPlayer{userID: userID, nationID: nationID})
	return nil
}

func (m *mockPlayerRepo) RemovePlayerFromGame(_ context.Context, alias, userID string) (int64, error) {
	var kept []serverPlayer
	var removed int64
	for _, sp := range m.regs[alias] {
		if sp.userID == userID {
			removed++
			continue
		}
		kept = append(kept, sp)
	}
	m.regs[alias] = kept
	if removed > 0 {
		m.servers.servers[alias].Version++
	}
	return removed, nil
}

type mockSource struct {
	games map[string]dominions.GameData
	calls int
}

func newMockSource() *mockSource {
	return &mockSource{games: make(map[string]dominions.GameData)}
}

func (m *mockSource) GameData(_ context.Context, address string) (dominions.GameData, error) {
	m.calls++
	g, ok := m.games[address]
	if !ok {
		return dominions.GameData{}, fmt.Errorf("dial %s: connection refused", address)
	}
	return g, nil
}

type mockNames struct {
	fail map[string]bool
}

func (m *mockNames) DisplayName(_ context.Context, userID string) (string, error) {
	if m.fail[userID] {
		return "", errors.New("discord unavailable")
	}
	return "name-" + userID, nil
}

type event struct {
	target    string
	eventType string
	data      any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	server []event
	users  []event
}

func (b *recordingBroadcaster) BroadcastServerEvent(alias, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.server = append(b.server, event{alias, eventType, data})
}

func (b *recordingBroadcaster) NotifyUser(userID, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append(b.users, event{userID, eventType, data})
}

type mockLedger struct {
	announced map[string]int
}

func (m *mockLedger) MarkAnnounced(_ context.Context, alias string, turn int) (bool, error) {
	if cur, ok := m.announced[alias]; ok && cur >= turn {
		return false, nil
	}
	m.announced[alias] = turn
	return true, nil
}

// testRig bundles a service with its in-memory collaborators.
type testRig struct {
	svc     *ServerService
	servers *mockServerRepo
	players *mockPlayerRepo
	source  *mockSource
	names   *mockNames
	hub     *recordingBroadcaster
}

func newTestRig() *testRig {
	servers := newMockServerRepo()
	players := newMockPlayerRepo(servers)
	source := newMockSource()
	names := &mockNames{fail: make(map[string]bool)}
	hub := &recordingBroadcaster{}
	svc := NewServerService(servers, players, source, names, nil)
	svc.SetBroadcaster(hub)
	return &testRig{svc: svc, servers: servers, players: players, source: source, names: names, hub: hub}
}
