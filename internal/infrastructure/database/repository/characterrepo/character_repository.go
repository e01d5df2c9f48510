package characterrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cyrene-ai/cyrene-server/internal/domain/character"
	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/database/dbschema"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

type CharacterGormRepository struct {
	db *gorm.DB
}

var _ character.Repository = (*CharacterGormRepository)(nil)

func NewCharacterGormRepository(db *gorm.DB) character.Repository {
	return &CharacterGormRepository{db: db}
}

func (repo *CharacterGormRepository) Create(ctx context.Context, chr *character.Character) error {
	entity := dbschema.NewSchemaCharacter(chr)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to create character", err)
	}
	chr.ID = entity.ID
	return nil
}

func (repo *CharacterGormRepository) FindByID(ctx context.Context, id uint) (*character.Character, error) {
	var entity dbschema.Character
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to find character by ID", err)
	}
	return entity.EtoD(), nil
}

func (repo *CharacterGormRepository) FindByName(ctx context.Context, name string) (*character.Character, error) {
	var entity dbschema.Character
	err := repo.db.WithContext(ctx).
		Where("name = ?", name).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to find character by name", err)
	}
	return entity.EtoD(), nil
}

func (repo *CharacterGormRepository) Update(ctx context.Context, chr *character.Character) error {
	err := repo.db.WithContext(ctx).
		Model(&dbschema.Character{}).
		Where("id = ?", chr.ID).
		Update("system_prompt", chr.SystemPrompt).
		Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to update character", err)
	}
	return nil
}

func (repo *CharacterGormRepository) Delete(ctx context.Context, id uint) error {
	if err := repo.db.WithContext(ctx).Delete(&dbschema.Character{}, id).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to delete character", err)
	}
	return nil
}

func (repo *CharacterGormRepository) List(ctx context.Context, p query.Pagination) ([]*character.Character, error) {
	p = p.Normalize()
	var entities []dbschema.Character
	err := repo.db.WithContext(ctx).
		Order("id ASC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeExternal, "failed to list characters", err)
	}
	characters := make([]*character.Character, 0, len(entities))
	for i := range entities {
		characters = append(characters, entities[i].EtoD())
	}
	return characters, nil
}
