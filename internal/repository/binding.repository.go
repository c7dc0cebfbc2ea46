package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/pkg/pg"
	"gorm.io/gorm"
)

type BindingRepository struct {
	*pg.DB
}

func NewBindingRepository(db *pg.DB) *BindingRepository {
	return &BindingRepository{db}
}

// FindByTriple resolves the tenant binding for a (project, vendor, channel)
// routing triple. Inactive bindings behave as missing.
func (r *BindingRepository) FindByTriple(ctx context.Context, projectID, vendorID, channelID int64) (*model.Binding, error) {
	var entity BindingEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("project_id = ? AND vendor_id = ? AND channel_id = ? AND active = ?",
			projectID, vendorID, channelID, true).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toBindingModel(&entity), nil
}

func (r *BindingRepository) Create(ctx context.Context, b *model.Binding) (*model.Binding, error) {
	entity := toBindingEntity(b)
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toBindingModel(entity), nil
}

// UpdateSecret sets the shared secret used for payload signature checks.
// Identity fields never mutate after creation.
func (r *BindingRepository) UpdateSecret(ctx context.Context, id int64, secret string) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&BindingEntity{}).
		Where("id = ?", id).
		Update("secret", secret).Error
}

func (r *BindingRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&BindingEntity{}).
		Where("id = ?", id).
		Update("active", active).Error
}

func (r *BindingRepository) Delete(ctx context.Context, id int64) error {
	return r.Write(ctx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&BindingEntity{}).Error
}
