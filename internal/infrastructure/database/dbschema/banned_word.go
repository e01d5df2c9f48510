package dbschema

import (
	"github.com/cyrene-ai/cyrene-server/internal/domain/moderation"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(BannedWord{})
}

// BannedWord represents one persisted content-policy entry.
type BannedWord struct {
	BaseModel
	Word string `gorm:"type:varchar(256);uniqueIndex;not null"`
}

func (w *BannedWord) EtoD() *moderation.BannedWord {
	if w == nil {
		return nil
	}
	return &moderation.BannedWord{ID: w.ID, Word: w.Word}
}
