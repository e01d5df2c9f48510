package dbschema

import (
	"github.com/cyrene-ai/cyrene-server/internal/domain/character"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Character{})
}

// Character represents the persisted character schema.
type Character struct {
	BaseModel
	Name         string `gorm:"type:varchar(150);uniqueIndex;not null"`
	SystemPrompt string `gorm:"type:text;not null"`
}

func NewSchemaCharacter(c *character.Character) *Character {
	if c == nil {
		return nil
	}
	return &Character{
		BaseModel:    BaseModel{ID: c.ID},
		Name:         c.Name,
		SystemPrompt: c.SystemPrompt,
	}
}

func (c *Character) EtoD() *character.Character {
	if c == nil {
		return nil
	}
	return &character.Character{
		ID:           c.ID,
		Name:         c.Name,
		SystemPrompt: c.SystemPrompt,
	}
}
