package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/constants"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/keys"
)

type queueRequest struct {
	StudentID string `json:"student_id"`
}

type acceptRequest struct {
	StudentID string `json:"student_id"`
	LobbyID   string `json:"lobby_id"`
	// Timeout reports that this student failed to accept in time; the
	// client submits it on behalf of the expired countdown.
	Timeout bool `json:"timeout"`
}

// JoinQueue enters the student into the matchmaking queue, or returns the
// pairing/ban state immediately.
func (h *Handler) JoinQueue(c *gin.Context) {
	var req queueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if keys.ActorKey(req.StudentID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrStudentIDRequired})
		return
	}
	res := h.queue.Join(req.StudentID)
	if res.Banned {
		c.JSON(http.StatusForbidden, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CancelQueue removes the student from the queue and any pending pairing.
func (h *Handler) CancelQueue(c *gin.Context) {
	var req queueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if keys.ActorKey(req.StudentID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrStudentIDRequired})
		return
	}
	h.queue.Leave(req.StudentID)
	c.JSON(http.StatusOK, gin.H{constants.JSONKeySuccess: true})
}

// QueueStatus reports whether the student is paired, waiting or banned.
func (h *Handler) QueueStatus(c *gin.Context) {
	studentID := c.Query("studentId")
	if keys.ActorKey(studentID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrStudentIDRequired})
		return
	}
	c.JSON(http.StatusOK, h.queue.Status(studentID))
}

// AcceptMatch records one side of the lobby-accept handshake. A timeout
// submission instead penalizes the student and removes them from the queue.
func (h *Handler) AcceptMatch(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if keys.ActorKey(req.StudentID) == "" || keys.ActorKey(req.LobbyID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrLobbyIDRequired})
		return
	}

	if req.Timeout {
		ban := h.queue.RecordAbandon(req.StudentID)
		h.queue.Leave(req.StudentID)
		h.queue.ClearAccepts(req.LobbyID)
		c.JSON(http.StatusOK, gin.H{"banned": true, "ban": ban})
		return
	}

	all := h.queue.Accept(req.LobbyID, req.StudentID)
	if all {
		h.queue.ClearAccepts(req.LobbyID)
	}
	c.JSON(http.StatusOK, gin.H{"ready": all, "lobby_id": req.LobbyID})
}

// BanStatus reports the student's active matchmaking ban, if any.
func (h *Handler) BanStatus(c *gin.Context) {
	studentID := c.Query("studentId")
	if keys.ActorKey(studentID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrStudentIDRequired})
		return
	}
	ban := h.queue.BanStatus(studentID)
	if ban == nil {
		c.JSON(http.StatusOK, gin.H{"banned": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banned": true, "ban": ban})
}
