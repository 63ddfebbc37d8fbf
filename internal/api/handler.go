package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/constants"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/matchmaking"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/realtime"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/service"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/storage"
)

// Handler groups all arena HTTP handlers.
type Handler struct {
	engine *service.Engine
	queue  *matchmaking.Service
	repo   storage.Repository
	hub    *realtime.Hub
}

// NewHandler creates a Handler wired to the engine, queue and hub.
func NewHandler(engine *service.Engine, queue *matchmaking.Service, repo storage.Repository, hub *realtime.Hub) *Handler {
	return &Handler{engine: engine, queue: queue, repo: repo, hub: hub}
}

// RegisterRoutes mounts every arena endpoint under the API prefix.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group(constants.RouteAPIPrefix)

	api.POST(constants.RouteMatchQueue, h.JoinQueue)
	api.POST(constants.RouteMatchCancel, h.CancelQueue)
	api.GET(constants.RouteMatchStatus, h.QueueStatus)
	api.POST(constants.RouteMatchAccept, h.AcceptMatch)
	api.GET(constants.RouteMatchBanStatus, h.BanStatus)

	api.POST(constants.RouteArenaInitialize, h.InitializeGame)
	api.GET(constants.RouteArenaRoom, h.GetRoom)
	api.POST(constants.RouteArenaRoomAction, h.SubmitAction)
	api.POST(constants.RouteArenaRoomLeave, h.LeaveRoom)
	api.DELETE(constants.RouteArenaRoom, h.DeleteRoom)

	api.GET(constants.RouteLeaderboard, h.Leaderboard)
	api.GET(constants.RouteArenaWS, h.WebSocket)
}
