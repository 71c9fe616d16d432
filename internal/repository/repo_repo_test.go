package repository

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/hello-base/ohashi/internal/model"
	"github.com/hello-base/ohashi/internal/model/fields"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := fields.Setup(db); err != nil {
		t.Fatalf("setup fields error: %v", err)
	}
	if err := db.AutoMigrate(&model.Repository{}, &model.Document{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

func TestRepoRepositoryCreateAssignsUUID(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepoRepository(db)

	r := &model.Repository{Name: "ohashi", Slug: "ohashi", URL: "https://github.com/hello-base/ohashi"}
	if err := repo.Create(r); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if r.ID.IsZero() {
		t.Fatalf("expected generated id")
	}
	if r.Status != model.RepoStatusPending {
		t.Fatalf("expected default status pending, got %q", r.Status)
	}

	got, err := repo.Get(r.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != "ohashi" {
		t.Fatalf("unexpected name: %s", got.Name)
	}
}

func TestRepoRepositoryListAndCount(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepoRepository(db)

	for _, name := range []string{"a", "b", "c"} {
		if err := repo.Create(&model.Repository{Name: fields.Char(name), URL: fields.URL("https://example.com/" + name)}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 repositories, got %d", count)
	}

	all, err := repo.List(0, -1)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 repositories, got %d", len(all))
	}

	page, err := repo.List(2, 2)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 repository on second page, got %d", len(page))
	}
}

func TestRepoRepositoryGetByURL(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepoRepository(db)

	if err := repo.Create(&model.Repository{Name: "x", URL: "https://example.com/x"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := repo.GetByURL("https://example.com/x"); err != nil {
		t.Fatalf("GetByURL error: %v", err)
	}
	if _, err := repo.GetByURL("https://example.com/y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentRepositoryByRepository(t *testing.T) {
	db := openTestDB(t)
	repos := NewRepoRepository(db)
	docs := NewDocumentRepository(db)

	r := &model.Repository{Name: "x", URL: "https://example.com/x", Status: model.RepoStatusReady}
	if err := repos.Create(r); err != nil {
		t.Fatalf("Create repository error: %v", err)
	}
	for i, title := range []string{"架构", "概览"} {
		doc := &model.Document{RepositoryID: r.ID, Title: fields.Char(title), SortOrder: 2 - i}
		if err := docs.Create(doc); err != nil {
			t.Fatalf("Create document error: %v", err)
		}
	}

	got, err := docs.GetByRepository(r.ID)
	if err != nil {
		t.Fatalf("GetByRepository error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "概览" {
		t.Fatalf("unexpected documents: %+v", got)
	}

	withDocs, err := repos.Get(r.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(withDocs.Documents) != 2 {
		t.Fatalf("expected preloaded documents, got %d", len(withDocs.Documents))
	}

	if err := docs.DeleteByRepositoryID(r.ID); err != nil {
		t.Fatalf("DeleteByRepositoryID error: %v", err)
	}
	got, _ = docs.GetByRepository(r.ID)
	if len(got) != 0 {
		t.Fatalf("expected no documents, got %d", len(got))
	}
}
