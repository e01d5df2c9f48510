package adminhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cyrene-ai/cyrene-server/internal/domain/character"
	"github.com/cyrene-ai/cyrene-server/internal/domain/conversation"
	"github.com/cyrene-ai/cyrene-server/internal/domain/moderation"
	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/domain/user"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// AdminHandler exposes the administrative operations: account management,
// character management, the banned-word set, and cross-user conversation
// access.
type AdminHandler struct {
	users      *user.Service
	characters *character.Service
	history    *conversation.HistoryService
	filter     *moderation.Filter
	logger     zerolog.Logger
}

func NewAdminHandler(
	users *user.Service,
	characters *character.Service,
	history *conversation.HistoryService,
	filter *moderation.Filter,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:      users,
		characters: characters,
		history:    history,
		filter:     filter,
		logger:     logger,
	}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUser registers an account without the captcha gate.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	usr, err := h.users.Register(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": usr.ID, "name": usr.Name})
}

type userIDRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

func (h *AdminHandler) userAction(c *gin.Context, action func(uint) error) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := action(req.UserID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID})
}

func (h *AdminHandler) SoftDelete(c *gin.Context) {
	h.userAction(c, func(id uint) error { return h.users.SoftDelete(c.Request.Context(), id) })
}

func (h *AdminHandler) UndoSoftDelete(c *gin.Context) {
	h.userAction(c, func(id uint) error { return h.users.UndoSoftDelete(c.Request.Context(), id) })
}

// TrueDelete permanently removes an account that was soft-deleted first.
func (h *AdminHandler) TrueDelete(c *gin.Context) {
	h.userAction(c, func(id uint) error { return h.users.HardDelete(c.Request.Context(), id) })
}

func (h *AdminHandler) Ban(c *gin.Context) {
	h.userAction(c, func(id uint) error { return h.users.Ban(c.Request.Context(), id) })
}

func (h *AdminHandler) Unban(c *gin.Context) {
	h.userAction(c, func(id uint) error { return h.users.Unban(c.Request.Context(), id) })
}

type pageRequest struct {
	PageSize   int `json:"page_size"`
	PageNumber int `json:"page_number"`
}

func (r pageRequest) pagination() query.Pagination {
	return query.Pagination{PageSize: r.PageSize, PageNumber: r.PageNumber}.Normalize()
}

func (h *AdminHandler) bindPage(c *gin.Context) (query.Pagination, bool) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		platformerrors.WriteValidationError(c, "invalid request body")
		return query.Pagination{}, false
	}
	return req.pagination(), true
}

type userView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"is_admin"`
	IsBanned bool   `json:"is_banned"`
}

func (h *AdminHandler) listUsers(c *gin.Context, deleted bool) {
	p, ok := h.bindPage(c)
	if !ok {
		return
	}
	users, err := h.users.List(c.Request.Context(), deleted, p)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	views := make([]userView, 0, len(users))
	for _, usr := range users {
		views = append(views, userView{ID: usr.ID, Name: usr.Name, IsAdmin: usr.IsAdmin, IsBanned: usr.IsBanned})
	}
	c.JSON(http.StatusOK, gin.H{"users": views})
}

func (h *AdminHandler) ListUser(c *gin.Context) {
	h.listUsers(c, false)
}

func (h *AdminHandler) GetSoftDeletedUser(c *gin.Context) {
	h.listUsers(c, true)
}

type characterRequest struct {
	Name         string `json:"name" binding:"required"`
	SystemPrompt string `json:"system_prompt" binding:"required"`
}

func (h *AdminHandler) CreateCharacter(c *gin.Context) {
	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	chr, err := h.characters.Create(c.Request.Context(), req.Name, req.SystemPrompt)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": chr.ID, "name": chr.Name})
}

func (h *AdminHandler) UpdateCharacter(c *gin.Context) {
	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := h.characters.UpdatePrompt(c.Request.Context(), req.Name, req.SystemPrompt); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": req.Name})
}

type deleteCharacterRequest struct {
	CharacterID uint `json:"character_id" binding:"required"`
}

func (h *AdminHandler) DeleteCharacter(c *gin.Context) {
	var req deleteCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := h.characters.Delete(c.Request.Context(), req.CharacterID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"character_id": req.CharacterID})
}

type wordRequest struct {
	Word string `json:"word" binding:"required"`
}

func (h *AdminHandler) AddNotAllowedWord(c *gin.Context) {
	var req wordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	entry, err := h.filter.AddWord(c.Request.Context(), req.Word)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": entry.ID, "word": entry.Word})
}

func (h *AdminHandler) DeleteNotAllowedWord(c *gin.Context) {
	var req wordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := h.filter.RemoveWordByText(c.Request.Context(), req.Word); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"word": req.Word})
}

func (h *AdminHandler) GetNotAllowedWord(c *gin.Context) {
	p, ok := h.bindPage(c)
	if !ok {
		return
	}
	entries, err := h.filter.ListWords(c.Request.Context(), p)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	words := make([]string, 0, len(entries))
	for _, entry := range entries {
		words = append(words, entry.Word)
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

type adminConversationView struct {
	ID     uint   `json:"id"`
	UserID uint   `json:"user_id"`
	Title  string `json:"title"`
}

// GetAllConversation lists conversations across all users.
func (h *AdminHandler) GetAllConversation(c *gin.Context) {
	p, ok := h.bindPage(c)
	if !ok {
		return
	}
	conversations, err := h.history.ListAll(c.Request.Context(), p)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	views := make([]adminConversationView, 0, len(conversations))
	for _, conv := range conversations {
		views = append(views, adminConversationView{ID: conv.ID, UserID: conv.UserID, Title: conv.Title})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": views})
}

type adminHistoryRequest struct {
	ConversationID uint `json:"conversation_id" binding:"required"`
	PageSize       int  `json:"page_size"`
	PageNumber     int  `json:"page_number"`
}

// GetChatHistory reads any conversation's log without an ownership check.
func (h *AdminHandler) GetChatHistory(c *gin.Context) {
	var req adminHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if _, err := h.history.Get(c.Request.Context(), req.ConversationID); err != nil {
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

type adminDeleteConversationRequest struct {
	ConversationID uint `json:"conversation_id" binding:"required"`
}

// DeleteConversation removes any conversation without an ownership check.
func (h *AdminHandler) DeleteConversation(c *gin.Context) {
	var req adminDeleteConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if _, err := h.history.Get(c.Request.Context(), req.ConversationID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	if err := h.history.Delete(c.Request.Context(), req.ConversationID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": req.ConversationID})
}
