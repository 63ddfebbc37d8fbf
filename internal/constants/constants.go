package constants

// Environment variable keys.
const (
	EnvConfigPath = "ARENA_CONFIG"
	EnvDBPath     = "ARENA_DB"
)

// Routes used by the backend router.
const (
	RouteAPIPrefix = "/api"

	RouteMatchQueue     = "/match/queue"
	RouteMatchCancel    = "/match/cancel"
	RouteMatchStatus    = "/match/status"
	RouteMatchAccept    = "/match/accept"
	RouteMatchBanStatus = "/match/ban-status"

	RouteArenaInitialize = "/arena/initialize"
	RouteArenaRoom       = "/arena/rooms/:roomID"
	RouteArenaRoomAction = "/arena/rooms/:roomID/action"
	RouteArenaRoomLeave  = "/arena/rooms/:roomID/leave"
	RouteArenaWS         = "/arena/ws"

	RouteLeaderboard = "/leaderboard"
)

// Common JSON response keys.
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeySuccess = "success"
)

// Common error messages used across API handlers.
const (
	ErrInvalidRequest    = "Invalid request"
	ErrStudentIDRequired = "studentId required"
	ErrLobbyIDRequired   = "studentId and lobbyId required"
	ErrInvalidInitData   = "Invalid game initialization data"
	ErrRoomNotFound      = "Game room not found"
	ErrNotYourTurn       = "Not your turn"
	ErrGameOver          = "Game is already finished"
	ErrInvalidAction     = "Invalid action type"
	ErrInvalidCard       = "Card not found in hand"
	ErrPowerUpUsed       = "Power-up not available"
	ErrNoQuestions       = "No usable questions available"
	ErrFailedInitGame    = "Failed to initialize game"
	ErrFailedFetchBoard  = "Failed to fetch leaderboard"
)

// Realtime event names published to rooms and actors.
const (
	EventGameCreated = "game_created"
	EventGameState   = "game_state_update"
	EventGameEnd     = "game_end"
	EventTurnOrder   = "turn_order"
	EventAction      = "opponent_action"
)

// Logging field names.
const (
	LogFieldRoomID    = "room_id"
	LogFieldLobbyID   = "lobby_id"
	LogFieldMatchID   = "game_id"
	LogFieldStudentID = "student_id"
	LogFieldAction    = "action"
	LogFieldAddr      = "addr"
)
