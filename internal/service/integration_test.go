//go:build integration

package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/freeeve/domtracker/internal/repository"
	"github.com/freeeve/domtracker/internal/repository/postgres"
	redisrepo "github.com/freeeve/domtracker/internal/repository/redis"
	"github.com/freeeve/domtracker/internal/testutil"
	"github.com/freeeve/domtracker/pkg/dominions"
)

// testEnv holds shared test infrastructure.
type testEnv struct {
	db      *sql.DB
	rdb     *goredis.Client
	servers *postgres.ServerRepo
	players *postgres.PlayerRepo
	cache   *redisrepo.Client
}

var env *testEnv

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	if env == nil {
		db := testutil.SetupDB(t)
		rdb := testutil.SetupRedis(t)
		env = &testEnv{
			db:      db,
			rdb:     rdb,
			servers: postgres.NewServerRepo(db),
			players: postgres.NewPlayerRepo(db),
			cache:   redisrepo.NewClientFromPool(rdb),
		}
	}
	testutil.CleanupDB(t, env.db)
	testutil.CleanupRedis(t, env.rdb)
	return env
}

// syncSource is a goroutine-safe GameDataSource.
type syncSource struct {
	mu    sync.Mutex
	games map[string]dominions.GameData
}

func (s *syncSource) GameData(_ context.Context, address string) (dominions.GameData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[address]
	if !ok {
		return dominions.GameData{}, errors.New("connection refused")
	}
	return g, nil
}

func (s *syncSource) set(address string, g dominions.GameData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[address] = g
}

func newIntegrationService(e *testEnv, source dominions.GameDataSource) *ServerService {
	return NewServerService(e.servers, e.players, source, &mockNames{fail: map[string]bool{}}, e.cache)
}

func TestIntegrationLifecycle(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	source := &syncSource{games: map[string]dominions.GameData{}}
	svc := newIntegrationService(e, source)

	if _, err := svc.CreateLobby(ctx, "fri", dominions.EraMiddle, 2, "owner", "weekly"); err != nil {
		t.Fatalf("CreateLobby: %v", err)
	}
	if _, err := svc.Register(ctx, "fri", "u1", dominions.ByName("arco")); err != nil {
		t.Fatalf("Register u1: %v", err)
	}
	if _, err := svc.Register(ctx, "fri", "u2", dominions.ByName("c'tis")); err != nil {
		t.Fatalf("Register u2: %v", err)
	}

	source.set("host:1", liveGame(dominions.PretenderTurn,
		nationSlot(43, dominions.StatusHuman, dominions.NotSubmitted)))
	if _, err := svc.Start(ctx, "fri", "host:1", "owner"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	d, err := svc.Details(ctx, "fri")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if d.Mode != dominions.RosterUploading || len(d.Roster) != 2 {
		t.Fatalf("unexpected roster %s %+v", d.Mode, d.Roster)
	}
	if d.Roster[1].Nation.ID != 57 || d.Roster[1].Submission != dominions.NotSubmitted {
		t.Errorf("expected C'tis not uploaded, got %+v", d.Roster[1])
	}

	source.set("host:1", liveGame(1, nationSlot(43, dominions.StatusHuman, dominions.Submitted)))
	w := NewTurnWatcher(svc, e.cache, time.Minute)
	hub := &recordingBroadcaster{}
	svc.SetBroadcaster(hub)
	w.CheckAll(ctx)
	w.CheckAll(ctx)

	if len(hub.server) != 1 {
		t.Fatalf("expected one announcement, got %d", len(hub.server))
	}
	server, _ := svc.GetServer(ctx, "fri")
	started, _ := dominions.StartedOf(server.State)
	if started.LastSeenTurn != 1 {
		t.Fatalf("expected stored turn 1, got %d", started.LastSeenTurn)
	}
}

func TestIntegrationConcurrentRegistration(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	svc := newIntegrationService(e, &syncSource{games: map[string]dominions.GameData{}})

	if _, err := svc.CreateLobby(ctx, "race", dominions.EraMiddle, 1, "owner", ""); err != nil {
		t.Fatalf("CreateLobby: %v", err)
	}

	users := []string{"a", "b", "c", "d", "e"}
	errs := make([]error, len(users))
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, "race", u, dominions.ByID(43))
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, dominions.ErrLobbyFull), errors.Is(err, dominions.ErrNationTaken),
			errors.Is(err, repository.ErrVersionConflict):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one registration, got %d", ok)
	}

	regs, err := e.players.PlayersWithNationIDs(ctx, "race")
	if err != nil {
		t.Fatalf("list registrations: %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("expected 1 stored registration, got %d", len(regs))
	}
}
