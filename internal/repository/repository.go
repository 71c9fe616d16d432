package repository

import (
	"errors"

	"github.com/hello-base/ohashi/internal/model"
	"github.com/hello-base/ohashi/internal/model/fields"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

type RepoRepository interface {
	Create(repo *model.Repository) error
	List(offset, limit int) ([]model.Repository, error)
	Count() (int64, error)
	Get(id fields.UUID) (*model.Repository, error)
	GetBasic(id fields.UUID) (*model.Repository, error)
	GetByURL(url string) (*model.Repository, error)
	Save(repo *model.Repository) error
	Delete(id fields.UUID) error
}

type DocumentRepository interface {
	Create(doc *model.Document) error
	GetByRepository(repoID fields.UUID) ([]model.Document, error)
	Get(id fields.UUID) (*model.Document, error)
	Save(doc *model.Document) error
	Delete(id fields.UUID) error
	DeleteByRepositoryID(repoID fields.UUID) error
}
