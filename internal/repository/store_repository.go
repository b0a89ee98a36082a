package repository

import (
	"errors"
	"strings"

	"github.com/pintuan-next/internal/models"

	"gorm.io/gorm"
)

// StoreRepository 店铺数据访问接口
type StoreRepository interface {
	Create(store *models.Store) error
	GetByID(id uint) (*models.Store, error)
	GetBySlug(slug string) (*models.Store, error)
	WithTx(tx *gorm.DB) *GormStoreRepository
}

// GormStoreRepository GORM 实现
type GormStoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓库
func NewStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStoreRepository) WithTx(tx *gorm.DB) *GormStoreRepository {
	if tx == nil {
		return r
	}
	return &GormStoreRepository{db: tx}
}

// Create 创建店铺
func (r *GormStoreRepository) Create(store *models.Store) error {
	return r.db.Create(store).Error
}

// GetByID 根据 ID 获取店铺
func (r *GormStoreRepository) GetByID(id uint) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// GetBySlug 根据唯一标识获取店铺
func (r *GormStoreRepository) GetBySlug(slug string) (*models.Store, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var store models.Store
	if err := r.db.Where("slug = ?", slug).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}
