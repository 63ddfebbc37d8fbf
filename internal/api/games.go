package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/constants"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/deck"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/service"
)

type initializeRequest struct {
	LobbyID  string               `json:"lobby_id"`
	Players  []service.PlayerSeed `json:"players"`
	ForceNew bool                 `json:"force_new"`
}

type leaveRequest struct {
	StudentID string `json:"student_id"`
}

// InitializeGame creates (or returns) the battle session for a lobby after
// the accept handshake. Safe to call from both clients.
func (h *Handler) InitializeGame(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	s, err := h.engine.InitializeGame(req.LobbyID, req.Players, req.ForceNew)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlayers):
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidInitData})
		case errors.Is(err, deck.ErrNoUsableQuestions):
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNoQuestions})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedInitGame})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": s.RoomID, "game_state": s})
}

// GetRoom returns the live session snapshot for a room.
func (h *Handler) GetRoom(c *gin.Context) {
	s, err := h.engine.GetGameState(c.Param("roomID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRoomNotFound})
		return
	}
	c.JSON(http.StatusOK, s)
}

// SubmitAction applies one player action against a room.
func (h *Handler) SubmitAction(c *gin.Context) {
	var act service.Action
	if err := c.ShouldBindJSON(&act); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	s, err := h.engine.ProcessAction(c.Param("roomID"), act)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRoomNotFound})
		case service.ErrGameOver:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrGameOver})
		case service.ErrNotYourTurn:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNotYourTurn})
		case service.ErrPlayerNotInSession:
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: err.Error()})
		case service.ErrInvalidCard:
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidCard})
		case service.ErrPowerUpUnavailable:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrPowerUpUsed})
		case service.ErrInvalidAction:
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidAction})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, s)
}

// LeaveRoom forfeits the match on behalf of the leaving student.
func (h *Handler) LeaveRoom(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	s, err := h.engine.Forfeit(c.Param("roomID"), req.StudentID)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRoomNotFound})
		case service.ErrGameOver:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrGameOver})
		case service.ErrPlayerNotInSession:
			c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteRoom evicts a room and its durable mirror. Best effort; deleting an
// unknown room succeeds.
func (h *Handler) DeleteRoom(c *gin.Context) {
	h.engine.CleanupGame(c.Param("roomID"))
	c.JSON(http.StatusOK, gin.H{constants.JSONKeySuccess: true})
}

// Leaderboard returns the top student profiles ordered by arena stars.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	profiles, err := h.repo.GetTopStudents(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBoard})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": profiles})
}
