package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("record not found")
)

type VendorRepository struct {
	*pg.DB
}

func NewVendorRepository(db *pg.DB) *VendorRepository {
	return &VendorRepository{db}
}

// FindActiveBySlug resolves a vendor catalog entry by routing slug.
func (r *VendorRepository) FindActiveBySlug(ctx context.Context, slug string) (*model.Vendor, error) {
	var entity VendorEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("slug = ? AND active = ?", slug, true).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toVendorModel(&entity), nil
}

// List returns the whole vendor catalog, active or not.
func (r *VendorRepository) List(ctx context.Context) ([]*model.Vendor, error) {
	var entities []*VendorEntity
	if err := r.Read(ctx).WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Vendor, len(entities))
	for i, e := range entities {
		out[i] = toVendorModel(e)
	}
	return out, nil
}

func (r *VendorRepository) Create(ctx context.Context, v *model.Vendor) (*model.Vendor, error) {
	entity := &VendorEntity{Slug: v.Slug, Name: v.Name, Active: v.Active}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toVendorModel(entity), nil
}

type ChannelRepository struct {
	*pg.DB
}

func NewChannelRepository(db *pg.DB) *ChannelRepository {
	return &ChannelRepository{db}
}

func (r *ChannelRepository) FindActiveByType(ctx context.Context, channelType string) (*model.Channel, error) {
	var entity ChannelEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("type = ? AND active = ?", channelType, true).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toChannelModel(&entity), nil
}

func (r *ChannelRepository) List(ctx context.Context) ([]*model.Channel, error) {
	var entities []*ChannelEntity
	if err := r.Read(ctx).WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Channel, len(entities))
	for i, e := range entities {
		out[i] = toChannelModel(e)
	}
	return out, nil
}

func (r *ChannelRepository) Create(ctx context.Context, c *model.Channel) (*model.Channel, error) {
	entity := &ChannelEntity{Type: c.Type, Active: c.Active}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toChannelModel(entity), nil
}

type ProjectRepository struct {
	*pg.DB
}

func NewProjectRepository(db *pg.DB) *ProjectRepository {
	return &ProjectRepository{db}
}

// FindByNameOrID accepts the webhook URL project segment, which carries
// either the numeric project id or the exact project name.
func (r *ProjectRepository) FindByNameOrID(ctx context.Context, key string) (*model.Project, error) {
	q := r.Read(ctx).WithContext(ctx)
	var entity ProjectEntity

	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		err = q.Where("id = ?", id).First(&entity).Error
		if err == nil {
			return toProjectModel(&entity), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Fall through: an all-digit project name is still resolvable.
	}

	err := q.Where("name = ?", key).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toProjectModel(&entity), nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	entity := &ProjectEntity{UserID: p.UserID, Name: p.Name, Active: p.Active}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toProjectModel(entity), nil
}
