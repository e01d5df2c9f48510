package conversation

import (
	"context"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// WindowLimit is the hard cap on the number of recent messages supplied as
// model context. Truncation is purely count-based.
const WindowLimit = 20

// HistoryService owns the ordered message log of a conversation: bounded
// window reads, paged reads, appends, and the remove-last-turn rollback.
type HistoryService struct {
	conversations ConversationRepository
	messages      MessageRepository
}

// NewHistoryService creates a history service.
func NewHistoryService(conversations ConversationRepository, messages MessageRepository) *HistoryService {
	return &HistoryService{conversations: conversations, messages: messages}
}

// Get returns the conversation or a not-found error.
func (s *HistoryService) Get(ctx context.Context, id uint) (*Conversation, error) {
	c, err := s.conversations.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup conversation")
	}
	if c == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", nil)
	}
	return c, nil
}

// GetOwned returns the conversation if it belongs to userID; a mismatch is a
// forbidden error with no side effects.
func (s *HistoryService) GetOwned(ctx context.Context, id, userID uint) (*Conversation, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "conversation belongs to another user", nil)
	}
	return c, nil
}

// Append inserts one message with a server-assigned timestamp.
func (s *HistoryService) Append(ctx context.Context, conversationID uint, role Role, content string) error {
	if _, err := s.Get(ctx, conversationID); err != nil {
		return err
	}
	m := &Message{ConversationID: conversationID, Role: role, Content: content}
	if err := s.messages.Append(ctx, m); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "append message")
	}
	return nil
}

// RecentWindow returns up to limit of the most recent messages, oldest
// first. A non-positive limit falls back to WindowLimit.
func (s *HistoryService) RecentWindow(ctx context.Context, conversationID uint, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = WindowLimit
	}
	msgs, err := s.messages.Newest(ctx, conversationID, limit)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load recent messages")
	}
	// newest-first from the repository; reverse into chronological order
	turns := make([]Turn, len(msgs))
	for i, m := range msgs {
		turns[len(msgs)-1-i] = Turn{Role: m.Role, Content: m.Content}
	}
	return turns, nil
}

// PagedHistory returns one 1-indexed page of the log for user-facing
// retrieval, oldest first within the page.
func (s *HistoryService) PagedHistory(ctx context.Context, conversationID uint, p query.Pagination) ([]HistoryEntry, error) {
	msgs, err := s.messages.Page(ctx, conversationID, p)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load message page")
	}
	entries := make([]HistoryEntry, len(msgs))
	for i, m := range msgs {
		entries[len(msgs)-1-i] = HistoryEntry{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt}
	}
	return entries, nil
}

// RemoveLastTurn deletes the two most recent messages, assumed to be one
// user+assistant pair. With fewer than two messages it deletes whatever
// remains and still succeeds; it is safe to call on an empty log. This is
// the sole rollback primitive.
func (s *HistoryService) RemoveLastTurn(ctx context.Context, conversationID uint) error {
	if err := s.messages.DeleteNewest(ctx, conversationID, 2); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "remove last turn")
	}
	return nil
}

// RemoveNewestMessage deletes only the single most recent message. The turn
// pipeline uses it to discard a dangling user message whose answer never
// arrived, leaving the preceding completed turn intact.
func (s *HistoryService) RemoveNewestMessage(ctx context.Context, conversationID uint) error {
	if err := s.messages.DeleteNewest(ctx, conversationID, 1); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "remove newest message")
	}
	return nil
}

// Delete removes the conversation and all of its messages.
func (s *HistoryService) Delete(ctx context.Context, conversationID uint) error {
	if _, err := s.Get(ctx, conversationID); err != nil {
		return err
	}
	if err := s.conversations.Delete(ctx, conversationID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete conversation")
	}
	return nil
}

// Create starts a new conversation for the user with the given title.
func (s *HistoryService) Create(ctx context.Context, userID uint, title string) (*Conversation, error) {
	c := &Conversation{UserID: userID, Title: title}
	if err := s.conversations.Create(ctx, c); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create conversation")
	}
	return c, nil
}

// ListByUser returns the user's conversations, paged.
func (s *HistoryService) ListByUser(ctx context.Context, userID uint, p query.Pagination) ([]*Conversation, error) {
	convs, err := s.conversations.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list conversations")
	}
	return convs, nil
}

// ListAll returns every conversation, paged. Admin use only.
func (s *HistoryService) ListAll(ctx context.Context, p query.Pagination) ([]*Conversation, error) {
	convs, err := s.conversations.ListAll(ctx, p)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list conversations")
	}
	return convs, nil
}
