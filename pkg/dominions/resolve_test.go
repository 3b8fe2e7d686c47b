package dominions

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveLobbyNationByPrefix(t *testing.T) {
	n, err := ResolveLobbyNation(ByName("ULM"), EraMiddle)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if n.ID != 49 || n.Era != EraMiddle {
		t.Errorf("expected MA Ulm (49), got %s", n)
	}
}

func TestResolveLobbyNationAmbiguous(t *testing.T) {
	_, err := ResolveLobbyNation(ByName("c"), EraEarly)
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	var nerr *NationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NationError, got %T", err)
	}
	if nerr.Specifier.Prefix() != "c" {
		t.Errorf("expected specifier c, got %s", nerr.Specifier)
	}
	if !strings.Contains(err.Error(), "c") {
		t.Errorf("expected message to name the specifier, got %q", err.Error())
	}
}

func TestResolveLobbyNationNotFound(t *testing.T) {
	_, err := ResolveLobbyNation(ByName("zzz"), EraLate)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveLobbyNationByIDStaysInEra(t *testing.T) {
	// 5 is Early Arcoscephale; it must not resolve in a Middle lobby.
	_, err := ResolveLobbyNation(ByID(5), EraMiddle)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	n, err := ResolveLobbyNation(ByID(5), EraEarly)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if n.Name != "Arcoscephale" {
		t.Errorf("expected Arcoscephale, got %s", n.Name)
	}
}

func TestResolveLobbyNationNeverLeavesEra(t *testing.T) {
	prefixes := []string{"a", "ar", "c", "ca", "m", "ul", "x", "pa", "r"}
	for _, era := range Eras {
		for _, p := range prefixes {
			n, err := ResolveLobbyNation(ByName(p), era)
			if err != nil {
				continue
			}
			if n.Era != era {
				t.Errorf("prefix %q in era %s resolved to %s", p, era, n)
			}
		}
	}
}

func testGame(turn int) GameData {
	return GameData{
		GameName: "test",
		Turn:     turn,
		Nations: []NationDetails{
			{Nation: Nation{43, "Arcoscephale", EraMiddle}, Status: StatusHuman, Submitted: Submitted},
			{Nation: Nation{57, "C'tis", EraMiddle}, Status: StatusHuman, Submitted: NotSubmitted},
			{Nation: Nation{56, "Caelum", EraMiddle}, Status: StatusAI},
		},
	}
}

func TestResolveGameNation(t *testing.T) {
	game := testGame(3)

	nd, err := ResolveGameNation(ByName("arc"), game)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if nd.Nation.ID != 43 {
		t.Errorf("expected 43, got %d", nd.Nation.ID)
	}

	nd, err = ResolveGameNation(ByID(56), game)
	if err != nil {
		t.Fatalf("resolve by id: %v", err)
	}
	if nd.Nation.Name != "Caelum" {
		t.Errorf("expected Caelum, got %s", nd.Nation.Name)
	}

	if _, err := ResolveGameNation(ByName("C"), game); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("expected ErrAmbiguous, got %v", err)
	}
}

func TestResolveGameNationOnlyLiveNations(t *testing.T) {
	game := testGame(3)
	// Ulm exists in the catalog but not in this game.
	_, err := ResolveGameNation(ByName("ulm"), game)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := ResolveGameNation(ByID(49), game); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for id 49, got %v", err)
	}
}

func TestResolveGameNationPretenderHint(t *testing.T) {
	_, err := ResolveGameNation(ByName("ulm"), testGame(PretenderTurn))
	var nerr *NationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NationError, got %v", err)
	}
	if !nerr.PreGame {
		t.Error("expected PreGame to be set during pretender upload")
	}
	if !strings.Contains(err.Error(), "pretender") {
		t.Errorf("expected pretender hint, got %q", err.Error())
	}

	_, err = ResolveGameNation(ByName("ulm"), testGame(4))
	if strings.Contains(err.Error(), "pretender") {
		t.Errorf("unexpected pretender hint after turn 1: %q", err.Error())
	}
}
