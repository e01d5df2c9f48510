package bannedwordrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cyrene-ai/cyrene-server/internal/domain/moderation"
	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/dbschema"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

type BannedWordGormRepository struct {
	db *gorm.DB
}

var _ moderation.Repository = (*BannedWordGormRepository)(nil)

func NewBannedWordGormRepository(db *gorm.DB) moderation.Repository {
	return &BannedWordGormRepository{db: db}
}

func (repo *BannedWordGormRepository) Add(ctx context.Context, word string) (*moderation.BannedWord, error) {
	entity := dbschema.BannedWord{Word: word}
	if err := repo.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to add banned word", err)
	}
	return entity.EtoD(), nil
}

func (repo *BannedWordGormRepository) FindByWord(ctx context.Context, word string) (*moderation.BannedWord, error) {
	var entity dbschema.BannedWord
	err := repo.db.WithContext(ctx).
		Where("word = ?", word).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to find banned word", err)
	}
	return entity.EtoD(), nil
}

func (repo *BannedWordGormRepository) Remove(ctx context.Context, id uint) error {
	if err := repo.db.WithContext(ctx).Delete(&dbschema.BannedWord{}, id).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to remove banned word", err)
	}
	return nil
}

func (repo *BannedWordGormRepository) List(ctx context.Context, p query.Pagination) ([]*moderation.BannedWord, error) {
	p = p.Normalize()
	var entities []dbschema.BannedWord
	err := repo.db.WithContext(ctx).
		Order("id ASC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to list banned words", err)
	}
	words := make([]*moderation.BannedWord, 0, len(entities))
	for i := range entities {
		words = append(words, entities[i].EtoD())
	}
	return words, nil
}

func (repo *BannedWordGormRepository) All(ctx context.Context) ([]string, error) {
	var words []string
	err := repo.db.WithContext(ctx).
		Model(&dbschema.BannedWord{}).
		Order("id ASC").
		Pluck("word", &words).
		Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to load banned words", err)
	}
	return words, nil
}
