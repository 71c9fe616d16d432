package repository

import (
	"github.com/hello-base/ohashi/internal/model"
	"github.com/hello-base/ohashi/internal/model/fields"
	"gorm.io/gorm"
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

func (r *documentRepository) GetByRepository(repoID fields.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Where("repository_id = ?", repoID).
		Order("sort_order").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Get(id fields.UUID) (*model.Document, error) {
	var doc model.Document
	err := r.db.First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Save(doc *model.Document) error {
	return r.db.Save(doc).Error
}

func (r *documentRepository) Delete(id fields.UUID) error {
	return r.db.Delete(&model.Document{}, "id = ?", id).Error
}

func (r *documentRepository) DeleteByRepositoryID(repoID fields.UUID) error {
	return r.db.Where("repository_id = ?", repoID).Delete(&model.Document{}).Error
}
