package api

import (
	"github.com/gin-gonic/gin"
)

// WebSocket attaches the caller to the realtime hub. The connection is held
// open until the client disconnects.
func (h *Handler) WebSocket(c *gin.Context) {
	h.hub.Handle(c.Writer, c.Request, c.Query("actor"))
}
