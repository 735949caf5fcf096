package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditlens/auditlens/internal/services"
	"github.com/auditlens/auditlens/internal/utils"
)

type ChatHandler struct {
	svc services.ChatService
}

func NewChatHandler(svc services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type createChatRequest struct {
	SystemInstruction string `json:"systemInstruction"`
}

type createChatResponse struct {
	SessionID string `json:"sessionId"`
}

func (h *ChatHandler) Create(c *gin.Context) {
	const op = "ChatHandler.Create"

	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	sess, err := h.svc.Create(c.Request.Context(), req.SystemInstruction)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, createChatResponse{SessionID: sess.ID})
}

type chatMessageRequest struct {
	Message string `json:"message"`
}

// Message relays the model's reply as a text/event-stream:
// `data: {"text": "<chunk>"}` lines terminated by `data: [DONE]`.
func (h *ChatHandler) Message(c *gin.Context) {
	const op = "ChatHandler.Message"

	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	chunks, errs, err := h.svc.Stream(c.Request.Context(), c.Param("session_id"), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for chunks != nil || errs != nil {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			b, merr := json.Marshal(gin.H{"text": chunk})
			if merr != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", b)
			c.Writer.Flush()
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			// headers are gone; surface the error in-stream and terminate
			b, _ := json.Marshal(gin.H{"error": e.Error()})
			fmt.Fprintf(c.Writer, "data: %s\n\n", b)
			c.Writer.Flush()
			chunks, errs = nil, nil
		case <-c.Request.Context().Done():
			return
		}
	}

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}
