package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/auditlens/auditlens/internal/services"
	"github.com/auditlens/auditlens/internal/utils"
)

// WSHandler relays the same chat stream as the SSE endpoint over a
// WebSocket, for clients that keep one socket open across messages.
type WSHandler struct {
	svc      services.ChatService
	upgrader websocket.Upgrader
}

func NewWSHandler(svc services.ChatService) *WSHandler {
	return &WSHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Message string `json:"message"`
}

type wsServerMsg struct {
	Type string `json:"type"` // chunk|done|error
	Text string `json:"text,omitempty"`
	Code string `json:"code,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) ChatWS(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.ChatWS", "missing session_id", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.Message == "" {
			_ = wc.writeJSON(wsServerMsg{Type: "error", Code: string(utils.CodeInvalidArgument), Text: "message is required"})
			continue
		}

		chunks, errs, serr := h.svc.Stream(ctx, sessionID, msg.Message)
		if serr != nil {
			code := utils.CodeInternal
			if utils.IsCode(serr, utils.CodeNotFound) {
				code = utils.CodeNotFound
			}
			_ = wc.writeJSON(wsServerMsg{Type: "error", Code: string(code), Text: serr.Error()})
			if code == utils.CodeNotFound {
				return
			}
			continue
		}

		failed := false
		for chunks != nil || errs != nil {
			select {
			case chunk, ok := <-chunks:
				if !ok {
					chunks = nil
					continue
				}
				if werr := wc.writeJSON(wsServerMsg{Type: "chunk", Text: chunk}); werr != nil {
					return
				}
			case e, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				_ = wc.writeJSON(wsServerMsg{Type: "error", Code: string(utils.CodeInternal), Text: e.Error()})
				failed = true
				chunks, errs = nil, nil
			case <-ctx.Done():
				return
			}
		}
		if !failed {
			if werr := wc.writeJSON(wsServerMsg{Type: "done"}); werr != nil {
				return
			}
		}
	}
}
