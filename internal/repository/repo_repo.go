package repository

import (
	"errors"

	"github.com/hello-base/ohashi/internal/model"
	"github.com/hello-base/ohashi/internal/model/fields"
	"gorm.io/gorm"
)

type repoRepository struct {
	db *gorm.DB
}

func NewRepoRepository(db *gorm.DB) RepoRepository {
	return &repoRepository{db: db}
}

func (r *repoRepository) Create(repo *model.Repository) error {
	return r.db.Create(repo).Error
}

// List limit 为 -1 时返回全部
func (r *repoRepository) List(offset, limit int) ([]model.Repository, error) {
	var repos []model.Repository
	err := r.db.Order("created_at desc").Offset(offset).Limit(limit).Find(&repos).Error
	return repos, err
}

func (r *repoRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Repository{}).Count(&count).Error
	return count, err
}

func (r *repoRepository) Get(id fields.UUID) (*model.Repository, error) {
	var repo model.Repository
	err := r.db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order")
	}).First(&repo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *repoRepository) GetBasic(id fields.UUID) (*model.Repository, error) {
	var repo model.Repository
	err := r.db.First(&repo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *repoRepository) GetByURL(url string) (*model.Repository, error) {
	var repo model.Repository
	err := r.db.Where("url = ?", url).First(&repo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &repo, nil
}

func (r *repoRepository) Save(repo *model.Repository) error {
	return r.db.Save(repo).Error
}

func (r *repoRepository) Delete(id fields.UUID) error {
	return r.db.Delete(&model.Repository{}, "id = ?", id).Error
}
