package dominions

import (
	"fmt"
	"sort"
)

// RosterMode names which merge produced a roster.
type RosterMode string

const (
	RosterLobby      RosterMode = "lobby"
	RosterUploading  RosterMode = "uploading"
	RosterInProgress RosterMode = "in_progress"
	RosterStarted    RosterMode = "started"
)

// RosterEntry is one nation slot of a merged roster. Open entries are
// unfilled lobby slots and carry no nation or player.
type RosterEntry struct {
	Nation          Nation           `json:"nation,omitzero"`
	Player          *Player          `json:"player,omitempty"`
	Status          NationStatus     `json:"status"`
	Open            bool             `json:"open"`
	Submission      SubmissionStatus `json:"submission"`
	SubmissionKnown bool             `json:"submission_known"`
}

// Roster is the merged view of registrations and the live game.
type Roster struct {
	Mode    RosterMode    `json:"mode"`
	Entries []RosterEntry `json:"entries"`
}

// Reconcile merges registrations with the live snapshot according to the
// shape of state. game is required for started servers and ignored for lobbies.
func Reconcile(state GameServerState, registered []Registration, game *GameData) (Roster, error) {
	switch s := state.(type) {
	case LobbyServer:
		return LobbyRoster(registered, s.Lobby)
	case StartedServer:
		if game == nil {
			return Roster{}, ErrMissingSnapshot
		}
		return StartedRoster(registered, *game), nil
	case StartedFromLobby:
		if game == nil {
			return Roster{}, ErrMissingSnapshot
		}
		if s.Started.Uploading() {
			return UploadingRoster(registered, *game), nil
		}
		return InProgressRoster(registered, *game), nil
	default:
		panic(unknownState(state))
	}
}

// LobbyRoster lists registrations in signup order followed by one open
// entry per unfilled slot.
func LobbyRoster(registered []Registration, lobby LobbyState) (Roster, error) {
	entries := make([]RosterEntry, 0, max(lobby.PlayerCount, len(registered)))
	for _, r := range registered {
		nation, err := catalogNation(r.NationID)
		if err != nil {
			return Roster{}, err
		}
		entries = append(entries, RosterEntry{Nation: nation, Player: playerRef(r.Player)})
	}
	for i := len(registered); i < lobby.PlayerCount; i++ {
		entries = append(entries, RosterEntry{Open: true})
	}
	return Roster{Mode: RosterLobby, Entries: entries}, nil
}

// UploadingRoster lists the nations that have uploaded a pretender, then the
// registered nations that have not. An uploaded nation nobody registered for
// is shown as Human.
func UploadingRoster(registered []Registration, game GameData) Roster {
	byNation := playersByNation(registered)
	entries := make([]RosterEntry, 0, len(game.Nations))
	for _, nd := range game.Nations {
		entry := RosterEntry{
			Nation:          nd.Nation,
			Status:          StatusHuman,
			Submission:      SubmissionFromBool(true),
			SubmissionKnown: true,
		}
		if p, ok := byNation[nd.Nation.ID]; ok {
			entry.Player = playerRef(p)
			entry.Status = nd.Status
		}
		entries = append(entries, entry)
	}
	leftovers := notUploaded(registered, game, SubmissionFromBool(false))
	return Roster{Mode: RosterUploading, Entries: append(entries, leftovers...)}
}

// InProgressRoster lists every nation in the running game by name, then the
// registered nations the game host has no record of.
func InProgressRoster(registered []Registration, game GameData) Roster {
	byNation := playersByNation(registered)
	nations := sortedByName(game.Nations)
	entries := make([]RosterEntry, 0, len(nations))
	for _, nd := range nations {
		entry := RosterEntry{
			Nation:          nd.Nation,
			Status:          nd.Status,
			Submission:      Submitted,
			SubmissionKnown: true,
		}
		if nd.Status == StatusHuman {
			entry.Submission = nd.Submitted
			if p, ok := byNation[nd.Nation.ID]; ok {
				entry.Player = playerRef(p)
			}
		}
		entries = append(entries, entry)
	}
	leftovers := notUploaded(registered, game, NotSubmitted)
	return Roster{Mode: RosterInProgress, Entries: append(entries, leftovers...)}
}

// StartedRoster lists every nation in the running game by name. Only human
// nations carry a submission status.
func StartedRoster(registered []Registration, game GameData) Roster {
	byNation := playersByNation(registered)
	nations := sortedByName(game.Nations)
	entries := make([]RosterEntry, 0, len(nations))
	for _, nd := range nations {
		entry := RosterEntry{Nation: nd.Nation, Status: nd.Status}
		if nd.Status == StatusHuman {
			entry.Submission = nd.Submitted
			entry.SubmissionKnown = true
			if p, ok := byNation[nd.Nation.ID]; ok {
				entry.Player = playerRef(p)
			}
		}
		entries = append(entries, entry)
	}
	return Roster{Mode: RosterStarted, Entries: entries}
}

// notUploaded returns an entry for every registration whose nation is
// missing from the snapshot, in registration order. Ids the catalog does not
// know get a placeholder in the era the game host reports.
func notUploaded(registered []Registration, game GameData, submission SubmissionStatus) []RosterEntry {
	present := make(map[uint32]struct{}, len(game.Nations))
	for _, nd := range game.Nations {
		present[nd.Nation.ID] = struct{}{}
	}
	var entries []RosterEntry
	for _, r := range registered {
		if _, ok := present[r.NationID]; ok {
			continue
		}
		nation, ok := NationByID(r.NationID)
		if !ok {
			nation = PlaceholderNation(r.NationID, gameEra(game))
		}
		entries = append(entries, RosterEntry{
			Nation:          nation,
			Player:          playerRef(r.Player),
			Status:          StatusHuman,
			Submission:      submission,
			SubmissionKnown: true,
		})
	}
	return entries
}

// gameEra is the era of the first catalog nation in the snapshot, or zero.
func gameEra(game GameData) Era {
	for _, nd := range game.Nations {
		if nd.Nation.Era.Valid() {
			return nd.Nation.Era
		}
	}
	return 0
}

// playersByNation indexes registrations by nation id. The earliest
// registration for a nation wins.
func playersByNation(registered []Registration) map[uint32]Player {
	m := make(map[uint32]Player, len(registered))
	for _, r := range registered {
		if _, ok := m[r.NationID]; !ok {
			m[r.NationID] = r.Player
		}
	}
	return m
}

func sortedByName(nations []NationDetails) []NationDetails {
	sorted := make([]NationDetails, len(nations))
	copy(sorted, nations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Nation.Name < sorted[j].Nation.Name
	})
	return sorted
}

func catalogNation(id uint32) (Nation, error) {
	n, ok := NationByID(id)
	if !ok {
		return Nation{}, fmt.Errorf("registered nation %d: %w", id, ErrNotFound)
	}
	return n, nil
}

func playerRef(p Player) *Player {
	return &p
}
