package dominions

import "context"

// PretenderTurn is the turn number a game host reports before the first
// turn, while players are still uploading pretenders.
const PretenderTurn = -1

// GameData is a point-in-time snapshot of a running game host.
type GameData struct {
	GameName  string          `json:"game_name"`
	Nations   []NationDetails `json:"nations"`
	Turn      int             `json:"turn"`
	TurnTimer int             `json:"turn_timer"` // milliseconds remaining
}

// Uploading reports whether the game is still in the pretender upload phase.
func (g GameData) Uploading() bool {
	return g.Turn == PretenderTurn
}

// TimeRemaining splits the turn timer into whole hours and minutes.
func (g GameData) TimeRemaining() (hours, minutes int) {
	totalMinutes := g.TurnTimer / (1000 * 60)
	return totalMinutes / 60, totalMinutes % 60
}

// Nation returns the live slot for a nation id.
func (g GameData) Nation(id uint32) (NationDetails, bool) {
	for _, nd := range g.Nations {
		if nd.Nation.ID == id {
			return nd, true
		}
	}
	return NationDetails{}, false
}

// GameDataSource fetches a live snapshot from the game host at address.
// Implementations return a complete snapshot or an error.
type GameDataSource interface {
	GameData(ctx context.Context, address string) (GameData, error)
}
