package chathandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cyrene-ai/cyrene-server/internal/domain/conversation"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/middlewares"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// ChatHandler drives streaming message turns.
type ChatHandler struct {
	turns  *conversation.TurnService
	logger zerolog.Logger
}

func NewChatHandler(turns *conversation.TurnService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{turns: turns, logger: logger}
}

type sendMessageRequest struct {
	ConversationID uint   `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
	Model          string `json:"model"`
	Regenerate     bool   `json:"regenerate"`
}

// SendMessage runs one turn and streams the reply tokens as chunked plain
// text. The response headers are only committed once the first token
// arrives, so failures before that point still produce a proper error
// status.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	usr, ok := middlewares.CurrentUser(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "authentication required")
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}

	streaming := false
	var flusher http.Flusher
	emit := func(token string) error {
		if !streaming {
			var ok bool
			flusher, ok = middlewares.PrepareStream(c)
			if !ok {
				return errors.New("response writer does not support flushing")
			}
			c.Status(http.StatusOK)
			streaming = true
		}
		if _, err := c.Writer.WriteString(token); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err := h.turns.SendMessage(c.Request.Context(), conversation.SendMessageInput{
		UserID:         usr.ID,
		ConversationID: req.ConversationID,
		Content:        req.Content,
		Model:          req.Model,
		Regenerate:     req.Regenerate,
	}, emit)
	if err != nil {
		if errors.Is(err, conversation.ErrStreamInterrupted) {
			// The sentinel already went out on the open stream; the status
			// line is committed and cannot change.
			h.logger.Warn().
				Uint("conversation_id", req.ConversationID).
				Msg("turn interrupted mid-stream")
			return
		}
		if streaming {
			h.logger.Warn().Err(err).
				Uint("conversation_id", req.ConversationID).
				Msg("turn failed after stream start")
			return
		}
		platformerrors.WriteError(c, err, h.logger)
	}
}
