package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hello-base/ohashi/internal/model"
)

func TestInitDBSQLite(t *testing.T) {
	db, err := InitDB("sqlite", ":memory:")
	require.NoError(t, err)

	repo := &model.Repository{Name: "ohashi", URL: "https://github.com/hello-base/ohashi"}
	require.NoError(t, db.Create(repo).Error)
	assert.False(t, repo.ID.IsZero(), "UUID 主键应由回调生成")

	assert.True(t, db.Migrator().HasTable(&model.Document{}))
	assert.True(t, db.Migrator().HasIndex(&model.Repository{}, "Slug"))
}

func TestFreezeSchemas(t *testing.T) {
	tables, err := FreezeSchemas(nil)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "documents", tables[0].Table)

	byName := map[string]map[string]any{}
	for _, spec := range tables[1].Fields {
		byName[spec.Name] = spec.Args
	}
	assert.Equal(t, true, byName["id"]["auto"])
	assert.Equal(t, true, byName["slug"]["db_index"])
	assert.Equal(t, 500, byName["url"]["max_length"])
	assert.Equal(t, false, byName["url"]["verify_exists"])

	for _, spec := range tables[0].Fields {
		if spec.Name == "repository_id" {
			assert.Equal(t, "ohashi.db.fields.CustomManagerForeignKey", spec.Path)
		}
	}
}
