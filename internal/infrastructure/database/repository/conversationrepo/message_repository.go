package conversationrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/cyrene-ai/cyrene-server/internal/domain/conversation"
	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/dbschema"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

type MessageGormRepository struct {
	db *gorm.DB
}

var _ conversation.MessageRepository = (*MessageGormRepository)(nil)

func NewMessageGormRepository(db *gorm.DB) conversation.MessageRepository {
	return &MessageGormRepository{db: db}
}

func (repo *MessageGormRepository) Append(ctx context.Context, msg *conversation.Message) error {
	entity := dbschema.NewSchemaMessage(msg)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to append message", err)
	}
	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

func (repo *MessageGormRepository) Newest(ctx context.Context, conversationID uint, limit int) ([]conversation.Message, error) {
	var entities []dbschema.Message
	err := repo.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to load newest messages", err)
	}
	return toDomainMessages(entities), nil
}

func (repo *MessageGormRepository) Page(ctx context.Context, conversationID uint, p query.Pagination) ([]conversation.Message, error) {
	p = p.Normalize()
	var entities []dbschema.Message
	err := repo.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to page messages", err)
	}
	return toDomainMessages(entities), nil
}

// DeleteNewest removes the n most recent messages of a conversation. Postgres
// does not support ORDER BY on DELETE, so the IDs are selected first.
func (repo *MessageGormRepository) DeleteNewest(ctx context.Context, conversationID uint, n int) error {
	if n <= 0 {
		return nil
	}
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		err := tx.Model(&dbschema.Message{}).
			Where("conversation_id = ?", conversationID).
			Order("created_at DESC, id DESC").
			Limit(n).
			Pluck("id", &ids).
			Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Delete(&dbschema.Message{}, ids).Error
	})
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to delete newest messages", err)
	}
	return nil
}

func toDomainMessages(entities []dbschema.Message) []conversation.Message {
	messages := make([]conversation.Message, 0, len(entities))
	for i := range entities {
		messages = append(messages, entities[i].EtoD())
	}
	return messages
}
