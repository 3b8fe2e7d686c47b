package dominions

// Player is a registered participant, identified by their Discord user id.
type Player struct {
	DiscordUserID     string `json:"discord_user_id"`
	TurnNotifications bool   `json:"turn_notifications"`
}

// Registration pairs a player with the nation they signed up for.
type Registration struct {
	Player   Player `json:"player"`
	NationID uint32 `json:"nation_id"`
}

// LobbyState is the signup record of a server that has not started yet.
type LobbyState struct {
	Era         Era    `json:"era"`
	PlayerCount int    `json:"player_count"`
	Owner       string `json:"owner"`
	Description string `json:"description,omitempty"` // empty means none
}

// StartedState locates the game host of a started server.
type StartedState struct {
	Address      string `json:"address"`
	LastSeenTurn int    `json:"last_seen_turn"`
}

// Uploading reports whether the last observed turn was the pretender phase.
func (s StartedState) Uploading() bool {
	return s.LastSeenTurn == PretenderTurn
}

// StateKind names the shape of a GameServerState.
type StateKind string

const (
	KindLobby            StateKind = "lobby"
	KindStarted          StateKind = "started"
	KindStartedFromLobby StateKind = "started_from_lobby"
)

// GameServerState is the lifecycle of one server. It is exactly one of
// LobbyServer, StartedServer or StartedFromLobby.
type GameServerState interface {
	Kind() StateKind
	isGameServerState()
}

// LobbyServer is a server whose signup is still open.
type LobbyServer struct {
	Lobby LobbyState `json:"lobby"`
}

// StartedServer is a started server without a lobby record.
type StartedServer struct {
	Started StartedState `json:"started"`
}

// StartedFromLobby is a started server that kept the lobby it was started from.
type StartedFromLobby struct {
	Started StartedState `json:"started"`
	Lobby   LobbyState   `json:"lobby"`
}

func (LobbyServer) Kind() StateKind      { return KindLobby }
func (StartedServer) Kind() StateKind    { return KindStarted }
func (StartedFromLobby) Kind() StateKind { return KindStartedFromLobby }

func (LobbyServer) isGameServerState()      {}
func (StartedServer) isGameServerState()    {}
func (StartedFromLobby) isGameServerState() {}

// StartedOf returns the started record of state, if it has one.
func StartedOf(state GameServerState) (StartedState, bool) {
	switch s := state.(type) {
	case LobbyServer:
		return StartedState{}, false
	case StartedServer:
		return s.Started, true
	case StartedFromLobby:
		return s.Started, true
	default:
		panic(unknownState(state))
	}
}

// LobbyOf returns the lobby record of state, if it has one.
func LobbyOf(state GameServerState) (LobbyState, bool) {
	switch s := state.(type) {
	case LobbyServer:
		return s.Lobby, true
	case StartedServer:
		return LobbyState{}, false
	case StartedFromLobby:
		return s.Lobby, true
	default:
		panic(unknownState(state))
	}
}
