package conversationhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cyrene-ai/cyrene-server/internal/domain/character"
	"github.com/cyrene-ai/cyrene-server/internal/domain/conversation"
	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/interfaces/httpserver/middlewares"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// ConversationHandler handles conversation lifecycle and history requests for
// regular users.
type ConversationHandler struct {
	history    *conversation.HistoryService
	characters *character.Service
	logger     zerolog.Logger
}

func NewConversationHandler(history *conversation.HistoryService, characters *character.Service, logger zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{history: history, characters: characters, logger: logger}
}

type createChatRequest struct {
	CharacterName string `json:"character_name" binding:"required"`
	ChatName      string `json:"chat_name" binding:"required"`
}

type conversationResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateChat opens a new conversation bound to an existing character. The
// character prefix is resolved once, here; later turns read it back from the
// title.
func (h *ConversationHandler) CreateChat(c *gin.Context) {
	usr, ok := middlewares.CurrentUser(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "authentication required")
		return
	}
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	chr, err := h.characters.GetByName(c.Request.Context(), req.CharacterName)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	title := chr.Name + conversation.TitleSeparator + req.ChatName
	conv, err := h.history.Create(c.Request.Context(), usr.ID, title)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, conversationResponse{ID: conv.ID, Title: conv.Title, CreatedAt: conv.CreatedAt})
}

type pageRequest struct {
	PageSize   int `json:"page_size"`
	PageNumber int `json:"page_number"`
}

func (r pageRequest) pagination() query.Pagination {
	return query.Pagination{PageSize: r.PageSize, PageNumber: r.PageNumber}.Normalize()
}

// GetCharacterName lists the available character names.
func (h *ConversationHandler) GetCharacterName(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	characters, err := h.characters.List(c.Request.Context(), req.pagination())
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	names := make([]string, 0, len(characters))
	for _, chr := range characters {
		names = append(names, chr.Name)
	}
	c.JSON(http.StatusOK, gin.H{"characters": names})
}

// GetCurrentUserConversation lists the caller's own conversations.
func (h *ConversationHandler) GetCurrentUserConversation(c *gin.Context) {
	usr, ok := middlewares.CurrentUser(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "authentication required")
		return
	}
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	conversations, err := h.history.ListByUser(c.Request.Context(), usr.ID, req.pagination())
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": toResponses(conversations)})
}

type chatHistoryRequest struct {
	ConversationID uint `json:"conversation_id" binding:"required"`
	PageSize       int  `json:"page_size"`
	PageNumber     int  `json:"page_number"`
}

// GetChatHistory returns one page of the caller's conversation log in
// chronological order.
func (h *ConversationHandler) GetChatHistory(c *gin.Context) {
	usr, ok := middlewares.CurrentUser(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "authentication required")
		return
	}
	var req chatHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if _, err := h.history.GetOwned(c.Request.Context(), req.ConversationID, usr.ID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	p := query.Pagination{PageSize: req.PageSize, PageNumber: req.PageNumber}.Normalize()
	entries, err := h.history.PagedHistory(c.Request.Context(), req.ConversationID, p)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": entries})
}

type deleteConversationRequest struct {
	ConversationID uint `json:"conversation_id" binding:"required"`
}

// DeleteConversation removes one of the caller's conversations and its log.
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	usr, ok := middlewares.CurrentUser(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "authentication required")
		return
	}
	var req deleteConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if _, err := h.history.GetOwned(c.Request.Context(), req.ConversationID, usr.ID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	if err := h.history.Delete(c.Request.Context(), req.ConversationID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": req.ConversationID})
}

func toResponses(conversations []*conversation.Conversation) []conversationResponse {
	out := make([]conversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, conversationResponse{ID: conv.ID, Title: conv.Title, CreatedAt: conv.CreatedAt})
	}
	return out
}
