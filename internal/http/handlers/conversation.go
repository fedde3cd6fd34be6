package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/edvoice/voicetutor-backend/internal/core/orchestrator"
)

type ConversationHandler struct {
	Orch     *orchestrator.Orchestrator
	Upgrader websocket.Upgrader
}

func NewConversationHandler(orch *orchestrator.Orchestrator) *ConversationHandler {
	return &ConversationHandler{
		Orch: orch,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WS upgrades the request and hands the connection to the orchestrator for
// the session's lifetime.
func (h *ConversationHandler) WS(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.Orch.HandleConnection(conn)
}
