package conversationrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cyrene-ai/cyrene-server/internal/domain/conversation"
	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/dbschema"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

type ConversationGormRepository struct {
	db *gorm.DB
}

var _ conversation.ConversationRepository = (*ConversationGormRepository)(nil)

func NewConversationGormRepository(db *gorm.DB) conversation.ConversationRepository {
	return &ConversationGormRepository{db: db}
}

func (repo *ConversationGormRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	entity := dbschema.NewSchemaConversation(conv)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to create conversation", err)
	}
	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

func (repo *ConversationGormRepository) FindByID(ctx context.Context, id uint) (*conversation.Conversation, error) {
	var entity dbschema.Conversation
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to find conversation by ID", err)
	}
	return entity.EtoD(), nil
}

func (repo *ConversationGormRepository) ListByUser(ctx context.Context, userID uint, p query.Pagination) ([]*conversation.Conversation, error) {
	p = p.Normalize()
	var entities []dbschema.Conversation
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to list conversations by user", err)
	}
	return toDomain(entities), nil
}

func (repo *ConversationGormRepository) ListAll(ctx context.Context, p query.Pagination) ([]*conversation.Conversation, error) {
	p = p.Normalize()
	var entities []dbschema.Conversation
	err := repo.db.WithContext(ctx).
		Order("id ASC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to list conversations", err)
	}
	return toDomain(entities), nil
}

// Delete removes the conversation and its message log in one transaction.
func (repo *ConversationGormRepository) Delete(ctx context.Context, id uint) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&dbschema.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dbschema.Conversation{}, id).Error
	})
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to delete conversation", err)
	}
	return nil
}

func toDomain(entities []dbschema.Conversation) []*conversation.Conversation {
	conversations := make([]*conversation.Conversation, 0, len(entities))
	for i := range entities {
		conversations = append(conversations, entities[i].EtoD())
	}
	return conversations
}
