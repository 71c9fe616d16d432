package model

import (
	"time"

	"github.com/hello-base/ohashi/internal/model/fields"
)

const (
	RepoStatusPending = "pending"
	RepoStatusReady   = "ready"
	RepoStatusError   = "error"
)

type Repository struct {
	ID          fields.UUID `json:"id" gorm:"primaryKey"`
	Name        fields.Char `json:"name" gorm:"size:255;not null"`
	Slug        fields.Slug `json:"slug" gorm:"size:50;index"`
	URL         fields.URL  `json:"url" gorm:"size:500;not null"`
	Description fields.Char `json:"description" gorm:"size:1000"`
	Status      fields.Char `json:"status" gorm:"size:50;default:pending"` // pending, ready, error
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Documents   []Document  `json:"documents,omitempty" gorm:"foreignKey:RepositoryID"`
}

type Document struct {
	ID           fields.UUID  `json:"id" gorm:"primaryKey"`
	RepositoryID fields.UUID  `json:"repository_id" gorm:"index;not null"`
	Title        fields.Char  `json:"title" gorm:"size:255;not null"`
	Slug         fields.Slug  `json:"slug" gorm:"size:50;index"`
	Author       fields.Email `json:"author" gorm:"size:75"`
	Content      string       `json:"content" gorm:"type:text"`
	SortOrder    int          `json:"sort_order" gorm:"default:0"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
