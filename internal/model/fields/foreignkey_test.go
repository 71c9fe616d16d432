package fields

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type author struct {
	ID     UUID  `gorm:"primaryKey"`
	Name   Char  `gorm:"size:100"`
	Email  Email `gorm:"size:75"`
	Slug   Slug  `gorm:"size:50;index"`
	Site   URL
	Active bool
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Setup(db))
	require.NoError(t, db.AutoMigrate(&author{}))
	return db
}

func seedAuthors(t *testing.T, db *gorm.DB) (active, inactive author) {
	t.Helper()
	active = author{Name: "Bryan", Slug: "bryan", Active: true}
	inactive = author{Name: "Ghost", Slug: "ghost", Active: false}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&inactive).Error)
	return active, inactive
}

func TestSetupFillsUUIDPrimaryKey(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Setup(db), "重复调用应无副作用")

	a := author{Name: "Bryan"}
	require.NoError(t, db.Create(&a).Error)
	assert.False(t, a.ID.IsZero())

	batch := []author{{Name: "A"}, {Name: "B"}}
	require.NoError(t, db.Create(&batch).Error)
	assert.False(t, batch[0].ID.IsZero())
	assert.NotEqual(t, batch[0].ID, batch[1].ID)

	fixed := NewUUID()
	c := author{ID: fixed, Name: "C"}
	require.NoError(t, db.Create(&c).Error)
	assert.Equal(t, fixed, c.ID, "已指定的主键不被覆盖")

	var loaded author
	require.NoError(t, db.First(&loaded, "id = ?", fixed).Error)
	assert.Equal(t, Char("C"), loaded.Name)
}

func TestForeignKeyValidateDefaultSet(t *testing.T) {
	db := setupTestDB(t)
	active, inactive := seedAuthors(t, db)
	ctx := context.Background()

	fk := NewCustomManagerForeignKey("author_id", &author{})
	assert.Equal(t, "author", fk.VerboseName)
	assert.NoError(t, fk.Validate(ctx, db, active.ID, nil))
	assert.NoError(t, fk.Validate(ctx, db, inactive.ID, nil))

	missing := NewUUID()
	err := fk.Validate(ctx, db, missing, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeInvalid, ve.Code)
	assert.Equal(t, "author", ve.Params["model"])
	assert.Equal(t, missing, ve.Params["pk"])
	assert.Contains(t, ve.Message, missing.String())
}

func TestForeignKeyValidateCustomManager(t *testing.T) {
	db := setupTestDB(t)
	active, inactive := seedAuthors(t, db)
	ctx := context.Background()

	fk := NewCustomManagerForeignKey("author_id", &author{},
		WithManager(ScopeSet(func(db *gorm.DB) *gorm.DB { return db.Where("active = ?", true) })))

	assert.NoError(t, fk.Validate(ctx, db, active.ID, nil))
	err := fk.Validate(ctx, db, inactive.ID, nil)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve, "不在自定义集合中的值应校验失败")
}

func TestForeignKeyValidateLimitChoicesTo(t *testing.T) {
	db := setupTestDB(t)
	active, _ := seedAuthors(t, db)
	ctx := context.Background()

	fk := NewCustomManagerForeignKey("author_id", &author{},
		WithManager(ScopeSet(func(db *gorm.DB) *gorm.DB { return db.Where("active = ?", true) })),
		WithLimitChoicesTo(map[string]any{"slug": "someone-else"}))
	assert.Error(t, fk.Validate(ctx, db, active.ID, nil), "自定义集合仍需满足 limit_choices_to")

	fk.LimitChoicesTo = map[string]any{"slug": "bryan"}
	assert.NoError(t, fk.Validate(ctx, db, active.ID, nil))
}

func TestForeignKeyNullAndParentLink(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	fk := NewCustomManagerForeignKey("author_id", &author{},
		WithManager(ScopeSet(func(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") })))

	var nilPtr *UUID
	assert.NoError(t, fk.Validate(ctx, db, nil, nil))
	assert.NoError(t, fk.Validate(ctx, db, nilPtr, nil))
	assert.NoError(t, fk.Validate(ctx, db, UUID{}, nil), "零值 UUID 视为空")

	parent := NewCustomManagerForeignKey("author_ptr", &author{}, WithParentLink())
	assert.NoError(t, parent.Validate(ctx, db, NewUUID(), nil), "父链接跳过校验")
}

type recordingRouter struct {
	db       *gorm.DB
	instance any
}

func (r *recordingRouter) DBForRead(db *gorm.DB, model any, instance any) *gorm.DB {
	r.instance = instance
	return r.db
}

func TestForeignKeyUsesReadRouter(t *testing.T) {
	db := setupTestDB(t)
	active, _ := seedAuthors(t, db)

	router := &recordingRouter{db: db}
	fk := NewCustomManagerForeignKey("author_id", &author{}, WithRouter(router))
	owner := &struct{ AuthorID UUID }{AuthorID: active.ID}
	require.NoError(t, fk.Validate(context.Background(), nil, active.ID, owner))
	assert.Same(t, owner, router.instance)
}

func TestForeignKeyFormFieldChoices(t *testing.T) {
	db := setupTestDB(t)
	seedAuthors(t, db)
	ctx := context.Background()

	fk := NewCustomManagerForeignKey("author_id", &author{},
		WithManager(ScopeSet(func(db *gorm.DB) *gorm.DB { return db.Where("active = ?", true) })))
	ff := fk.FormField()
	assert.Equal(t, FormModelChoiceField, ff.FormClass)
	assert.True(t, ff.Required)

	var choices []author
	require.NoError(t, ff.Choices(ctx, db, &choices))
	require.Len(t, choices, 1)
	assert.Equal(t, Slug("bryan"), choices[0].Slug)

	var all []author
	require.NoError(t, NewCustomManagerForeignKey("author_id", &author{}).FormField().Choices(ctx, db, &all))
	assert.Len(t, all, 2)
}
