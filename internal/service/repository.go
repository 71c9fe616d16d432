package service

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/internal/model"
	"github.com/hello-base/ohashi/internal/model/fields"
	"github.com/hello-base/ohashi/internal/repository"
	"github.com/hello-base/ohashi/internal/utils"
)

var (
	ErrInvalidRepositoryURL    = errors.New("invalid repository url")
	ErrRepositoryAlreadyExists = errors.New("repository already exists")
	ErrInvalidID               = errors.New("invalid id")
)

type RepositoryService struct {
	repoRepo repository.RepoRepository
	docRepo  repository.DocumentRepository
}

// NewRepositoryService 创建仓库服务实例。
func NewRepositoryService(repoRepo repository.RepoRepository, docRepo repository.DocumentRepository) *RepositoryService {
	return &RepositoryService{
		repoRepo: repoRepo,
		docRepo:  docRepo,
	}
}

type CreateRepoRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	URL         string `json:"url" binding:"required,url,max=500"`
	Slug        string `json:"slug" binding:"omitempty,max=50"`
	Description string `json:"description" binding:"max=1000"`
}

func (s *RepositoryService) Create(req CreateRepoRequest) (*model.Repository, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.Slug == "" {
		req.Slug = utils.Slugify(req.Name, 50)
	}

	if err := fields.CleanAll(map[string]string{
		"name":        req.Name,
		"slug":        req.Slug,
		"url":         req.URL,
		"description": req.Description,
	},
		model.RepositoryNameField.FormField(),
		model.RepositorySlugField.FormField(),
		model.RepositoryURLField.FormField(),
		model.RepositoryDescriptionField.FormField(),
	); err != nil {
		var verrs fields.ValidationErrors
		if errors.As(err, &verrs) {
			if _, bad := verrs.ByField()["url"]; bad {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRepositoryURL, err)
			}
		}
		return nil, err
	}

	existing, err := s.repoRepo.GetByURL(req.URL)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryAlreadyExists, req.URL)
	}

	repo := &model.Repository{
		Name:        fields.Char(req.Name),
		Slug:        fields.Slug(req.Slug),
		URL:         fields.URL(req.URL),
		Description: fields.Char(req.Description),
		Status:      model.RepoStatusPending,
	}
	if err := s.repoRepo.Create(repo); err != nil {
		return nil, err
	}
	klog.V(6).Infof("仓库已创建: id=%s, url=%s", repo.ID, repo.URL)
	return repo, nil
}

// List limit 为 -1 时返回全部
func (s *RepositoryService) List(offset, limit int) ([]model.Repository, error) {
	return s.repoRepo.List(offset, limit)
}

func (s *RepositoryService) Count() (int64, error) {
	return s.repoRepo.Count()
}

func (s *RepositoryService) Get(id string) (*model.Repository, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repoRepo.Get(uid)
}

// SetReady 标记仓库为 ready，之后才允许为其创建文档
func (s *RepositoryService) SetReady(id string) (*model.Repository, error) {
	return s.setStatus(id, model.RepoStatusReady)
}

func (s *RepositoryService) setStatus(id string, status string) (*model.Repository, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	repo, err := s.repoRepo.GetBasic(uid)
	if err != nil {
		return nil, err
	}
	repo.Status = fields.Char(status)
	if err := s.repoRepo.Save(repo); err != nil {
		return nil, err
	}
	klog.V(6).Infof("仓库状态更新: id=%s, status=%s", repo.ID, status)
	return repo, nil
}

func (s *RepositoryService) Delete(id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.docRepo.DeleteByRepositoryID(uid); err != nil {
		return err
	}
	return s.repoRepo.Delete(uid)
}

func parseID(id string) (fields.UUID, error) {
	uid, err := fields.ParseUUID(id)
	if err != nil {
		return fields.UUID{}, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return uid, nil
}
