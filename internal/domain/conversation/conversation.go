package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
)

// Role identifies who produced a message. Only the two values below are
// permitted in the message log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TitleSeparator joins the character name and the user-chosen chat name in a
// conversation title. The character prefix is resolved against the character
// table at creation time only.
const TitleSeparator = "_"

// Conversation is an ordered message log owned by exactly one user.
type Conversation struct {
	ID        uint
	UserID    uint
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CharacterName extracts the character prefix from the title.
func (c *Conversation) CharacterName() string {
	name, _, _ := strings.Cut(c.Title, TitleSeparator)
	return name
}

// Message is one entry of a conversation log. Rows are append-only; the only
// deletions are the remove-last-turn rollback and conversation cascade.
type Message struct {
	ID             uint
	ConversationID uint
	Role           Role
	Content        string
	CreatedAt      time.Time
}

// Turn is the {role, content} projection fed to the model and returned to
// clients.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HistoryEntry extends Turn with the creation timestamp for user-facing
// history pages.
type HistoryEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationRepository is the persistence contract for conversations.
// Lookups return (nil, nil) when no row matches. Delete cascades to the
// conversation's messages.
type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation) error
	FindByID(ctx context.Context, id uint) (*Conversation, error)
	ListByUser(ctx context.Context, userID uint, p query.Pagination) ([]*Conversation, error)
	ListAll(ctx context.Context, p query.Pagination) ([]*Conversation, error)
	Delete(ctx context.Context, id uint) error
}

// MessageRepository is the persistence contract for the message log.
// Newest and Page both return messages ordered newest-first by
// (created_at desc, id desc); id is the tie-break so that repeated reads are
// stable when timestamps collide at coarse resolution. Page 1 is the most
// recent slice; callers reverse within the page for chronological display.
type MessageRepository interface {
	Append(ctx context.Context, m *Message) error
	Newest(ctx context.Context, conversationID uint, limit int) ([]Message, error)
	Page(ctx context.Context, conversationID uint, p query.Pagination) ([]Message, error)
	DeleteNewest(ctx context.Context, conversationID uint, n int) error
}
