package model

import (
	"gorm.io/gorm"

	"github.com/hello-base/ohashi/internal/model/fields"
)

// ReadyRepositories 只允许引用状态为 ready 的仓库
var ReadyRepositories = fields.ScopeSet(func(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", RepoStatusReady)
})

// 仓库字段声明
var (
	RepositoryIDField          = fields.NewUUIDField("id", true, fields.WithPrimaryKey())
	RepositoryNameField        = fields.NewCharField("name", fields.WithMaxLength(255))
	RepositorySlugField        = fields.NewSlugField("slug", fields.WithBlank(true))
	RepositoryURLField         = fields.NewURLField("url", false, fields.WithMaxLength(500))
	RepositoryDescriptionField = fields.NewCharField("description", fields.WithMaxLength(1000), fields.WithBlank(true))
)

// 文档字段声明
var (
	DocumentIDField     = fields.NewUUIDField("id", true, fields.WithPrimaryKey())
	DocumentTitleField  = fields.NewCharField("title", fields.WithMaxLength(255))
	DocumentSlugField   = fields.NewSlugField("slug", fields.WithBlank(true))
	DocumentAuthorField = fields.NewEmailField("author", fields.WithBlank(true))

	// DocumentRepositoryField 文档所属仓库，候选集合为 ReadyRepositories
	DocumentRepositoryField = fields.NewCustomManagerForeignKey("repository_id", &Repository{},
		fields.WithManager(ReadyRepositories),
		fields.WithVerboseName("repository"),
	)
)

// RepositorySchema 仓库模型的字段描述
func RepositorySchema() map[string]fields.Describer {
	return map[string]fields.Describer{
		"id":          RepositoryIDField,
		"name":        RepositoryNameField,
		"slug":        RepositorySlugField,
		"url":         RepositoryURLField,
		"description": RepositoryDescriptionField,
	}
}

// DocumentSchema 文档模型的字段描述
func DocumentSchema() map[string]fields.Describer {
	return map[string]fields.Describer{
		"id":            DocumentIDField,
		"repository_id": DocumentRepositoryField,
		"title":         DocumentTitleField,
		"slug":          DocumentSlugField,
		"author":        DocumentAuthorField,
	}
}

// Schemas 全部模型，键为表名
func Schemas() map[string]map[string]fields.Describer {
	return map[string]map[string]fields.Describer{
		"repositories": RepositorySchema(),
		"documents":    DocumentSchema(),
	}
}
