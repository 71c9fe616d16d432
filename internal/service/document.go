package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/internal/model"
	"github.com/hello-base/ohashi/internal/model/fields"
	"github.com/hello-base/ohashi/internal/repository"
	"github.com/hello-base/ohashi/internal/utils"
)

type DocumentService struct {
	db       *gorm.DB
	docRepo  repository.DocumentRepository
	repoRepo repository.RepoRepository
}

func NewDocumentService(db *gorm.DB, docRepo repository.DocumentRepository, repoRepo repository.RepoRepository) *DocumentService {
	return &DocumentService{
		db:       db,
		docRepo:  docRepo,
		repoRepo: repoRepo,
	}
}

type CreateDocumentRequest struct {
	RepositoryID string `json:"repository_id" binding:"required,uuid"`
	Title        string `json:"title" binding:"required,max=255"`
	Slug         string `json:"slug" binding:"omitempty,max=50"`
	Author       string `json:"author" binding:"omitempty,email,max=75"`
	Content      string `json:"content"`
	SortOrder    int    `json:"sort_order"`
}

// Create 创建文档；所属仓库必须存在且处于 ready 状态，否则返回 *fields.ValidationError
func (s *DocumentService) Create(ctx context.Context, req CreateDocumentRequest) (*model.Document, error) {
	var repoID fields.UUID
	if strings.TrimSpace(req.RepositoryID) != "" {
		parsed, err := fields.ParseUUID(req.RepositoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidID, req.RepositoryID)
		}
		repoID = parsed
	}
	if req.Slug == "" {
		req.Slug = utils.Slugify(req.Title, 50)
	}

	if err := fields.CleanAll(map[string]string{
		"title":  req.Title,
		"slug":   req.Slug,
		"author": req.Author,
	},
		model.DocumentTitleField.FormField(),
		model.DocumentSlugField.FormField(),
		model.DocumentAuthorField.FormField(),
	); err != nil {
		return nil, err
	}

	doc := &model.Document{
		RepositoryID: repoID,
		Title:        fields.Char(req.Title),
		Slug:         fields.Slug(req.Slug),
		Author:       fields.Email(req.Author),
		Content:      req.Content,
		SortOrder:    req.SortOrder,
	}
	if repoID.IsZero() {
		return nil, &fields.ValidationError{
			Field:   "repository_id",
			Code:    fields.CodeRequired,
			Message: fields.ErrorMessages[fields.CodeRequired],
		}
	}
	if err := model.DocumentRepositoryField.Validate(ctx, s.db, doc.RepositoryID, doc); err != nil {
		return nil, err
	}

	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}
	klog.V(6).Infof("文档已创建: id=%s, repository=%s", doc.ID, doc.RepositoryID)
	return doc, nil
}

func (s *DocumentService) GetByRepository(repoID string) ([]model.Document, error) {
	uid, err := parseID(repoID)
	if err != nil {
		return nil, err
	}
	return s.docRepo.GetByRepository(uid)
}

func (s *DocumentService) Get(id string) (*model.Document, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.docRepo.Get(uid)
}

func (s *DocumentService) Update(id string, content string) (*model.Document, error) {
	doc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	doc.Content = content
	if err := s.docRepo.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Delete(id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.docRepo.Delete(uid)
}

// ExportAll 将仓库下的全部文档打包为 zip，附带 index.md 目录
func (s *DocumentService) ExportAll(repoID string) ([]byte, string, error) {
	uid, err := parseID(repoID)
	if err != nil {
		return nil, "", err
	}
	repo, err := s.repoRepo.GetBasic(uid)
	if err != nil {
		return nil, "", err
	}

	docs, err := s.docRepo.GetByRepository(uid)
	if err != nil {
		return nil, "", err
	}
	if len(docs) == 0 {
		return nil, "", fmt.Errorf("no documents to export")
	}

	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)

	indexFile, err := zipWriter.Create("index.md")
	if err != nil {
		return nil, "", err
	}
	if _, err := indexFile.Write([]byte(s.generateIndex(string(repo.Name), docs))); err != nil {
		return nil, "", err
	}

	for _, doc := range docs {
		f, err := zipWriter.Create(documentFilename(doc))
		if err != nil {
			return nil, "", err
		}
		if _, err := f.Write([]byte(doc.Content)); err != nil {
			return nil, "", err
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s-docs.zip", repo.Slug)
	return buf.Bytes(), filename, nil
}

func (s *DocumentService) generateIndex(repoName string, docs []model.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", repoName)
	b.WriteString("## 目录\n\n")
	for _, doc := range docs {
		fmt.Fprintf(&b, "- [%s](%s)\n", doc.Title, documentFilename(doc))
	}
	return b.String()
}

func documentFilename(doc model.Document) string {
	if doc.Slug != "" {
		return string(doc.Slug) + ".md"
	}
	return doc.ID.String() + ".md"
}
