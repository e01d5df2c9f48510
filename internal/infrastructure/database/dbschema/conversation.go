package dbschema

import (
	"time"

	"github.com/cyrene-ai/cyrene-server/internal/domain/conversation"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Conversation{})
	database.RegisterSchemaForAutoMigrate(Message{})
}

// Conversation represents the persisted conversation schema.
type Conversation struct {
	BaseModel
	UserID uint   `gorm:"index;not null"`
	User   User   `gorm:"foreignKey:UserID"`
	Title  string `gorm:"type:varchar(256);not null"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// Message represents one persisted log entry. The composite index backs the
// newest-first window query.
type Message struct {
	ID             uint         `gorm:"primarykey"`
	ConversationID uint         `gorm:"index:idx_message_conversation_created,priority:1;not null"`
	Conversation   Conversation `gorm:"foreignKey:ConversationID"`
	Role           string       `gorm:"type:varchar(20);not null"`
	Content        string       `gorm:"type:text;not null"`
	CreatedAt      time.Time    `gorm:"type:timestamptz(6);index:idx_message_conversation_created,priority:2;not null"`
}

// NewSchemaConversation converts a domain conversation into a schema instance.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	if c == nil {
		return nil
	}
	return &Conversation{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		UserID: c.UserID,
		Title:  c.Title,
	}
}

// EtoD converts a schema conversation back to the domain representation.
func (c *Conversation) EtoD() *conversation.Conversation {
	if c == nil {
		return nil
	}
	return &conversation.Conversation{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewSchemaMessage converts a domain message into a schema instance.
func NewSchemaMessage(m *conversation.Message) *Message {
	if m == nil {
		return nil
	}
	return &Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// EtoD converts a schema message back to the domain representation.
func (m *Message) EtoD() conversation.Message {
	return conversation.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           conversation.Role(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
