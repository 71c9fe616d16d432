package fields

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind 字段类型
type Kind string

const (
	KindChar       Kind = "CharField"
	KindEmail      Kind = "EmailField"
	KindSlug       Kind = "SlugField"
	KindURL        Kind = "URLField"
	KindUUID       Kind = "UUIDField"
	KindForeignKey Kind = "CustomManagerForeignKey"
)

// PathPrefix 字段在内省规则中的路径前缀
const PathPrefix = "ohashi.db.fields."

const (
	defaultEmailLength = 75
	defaultSlugLength  = 50
	defaultURLLength   = 200
	uuidLength         = 36
)

// Field 描述一个逻辑列
type Field struct {
	Name         string
	Kind         Kind
	MaxLength    int
	Default      any
	Editable     bool
	Null         bool
	Blank        bool
	DBIndex      bool
	PrimaryKey   bool
	VerifyExists bool
	Auto         bool

	dbIndexSet bool
}

// Option 字段声明选项
type Option func(*Field)

func WithMaxLength(n int) Option {
	return func(f *Field) { f.MaxLength = n }
}

func WithDefault(v any) Option {
	return func(f *Field) { f.Default = v }
}

func WithNull(null bool) Option {
	return func(f *Field) { f.Null = null }
}

func WithBlank(blank bool) Option {
	return func(f *Field) { f.Blank = blank }
}

func WithEditable(editable bool) Option {
	return func(f *Field) { f.Editable = editable }
}

// WithDBIndex 显式设置是否建索引
func WithDBIndex(index bool) Option {
	return func(f *Field) {
		f.DBIndex = index
		f.dbIndexSet = true
	}
}

func WithPrimaryKey() Option {
	return func(f *Field) { f.PrimaryKey = true }
}

func newField(name string, kind Kind, maxLength int, opts []Option) *Field {
	f := &Field{Name: name, Kind: kind, MaxLength: maxLength, Editable: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewCharField 创建字符串字段
func NewCharField(name string, opts ...Option) *Field {
	return newField(name, KindChar, 0, opts)
}

// NewEmailField 创建邮箱字段
func NewEmailField(name string, opts ...Option) *Field {
	return newField(name, KindEmail, defaultEmailLength, opts)
}

// NewSlugField 创建 slug 字段，除非显式 WithDBIndex(false)，否则总是建索引
func NewSlugField(name string, opts ...Option) *Field {
	f := newField(name, KindSlug, defaultSlugLength, opts)
	if !f.dbIndexSet {
		f.DBIndex = true
	}
	return f
}

// NewURLField 创建 URL 字段；verifyExists 只透传给表单，不做实际探测
func NewURLField(name string, verifyExists bool, opts ...Option) *Field {
	f := newField(name, KindURL, defaultURLLength, opts)
	f.VerifyExists = verifyExists
	return f
}

// NewUUIDField 创建 UUID 字段
// auto 为 true 且未指定默认值时，默认值为新生成的 UUID；作为主键时不可编辑
func NewUUIDField(name string, auto bool, opts ...Option) *Field {
	f := newField(name, KindUUID, uuidLength, opts)
	f.Auto = auto
	if auto && f.Default == nil {
		f.Default = func() any { return UUID(uuid.New()) }
	}
	if f.PrimaryKey {
		f.Editable = false
	}
	return f
}

// DefaultValue 返回字段默认值，默认值为函数时调用之
func (f *Field) DefaultValue() any {
	switch d := f.Default.(type) {
	case func() any:
		return d()
	case func() UUID:
		return d()
	case func() string:
		return d()
	}
	return f.Default
}

// HasDefault 是否声明了默认值
func (f *Field) HasDefault() bool {
	return f.Default != nil
}

// ColumnType 返回存储列类型
func (f *Field) ColumnType(dialect string) string {
	if f.Kind == KindUUID {
		return uuidColumnType(dialect)
	}
	return charColumnType(f.MaxLength)
}

// Path 返回内省规则使用的字段路径
func (f *Field) Path() string {
	return PathPrefix + string(f.Kind)
}

// Attr 读取内省参数
func (f *Field) Attr(name string) (any, bool) {
	switch name {
	case "max_length":
		return f.MaxLength, true
	case "null":
		return f.Null, true
	case "blank":
		return f.Blank, true
	case "db_index":
		return f.DBIndex, true
	case "primary_key":
		return f.PrimaryKey, true
	case "editable":
		return f.Editable, true
	case "verify_exists":
		return f.VerifyExists, f.Kind == KindURL
	case "auto":
		return f.Auto, f.Kind == KindUUID
	}
	return nil, false
}

func (f *Field) String() string {
	return fmt.Sprintf("%s(%s)", f.Kind, f.Name)
}

func charColumnType(maxLength int) string {
	if maxLength > 0 {
		return fmt.Sprintf("varchar(%d)", maxLength)
	}
	return "text"
}

func uuidColumnType(dialect string) string {
	if dialect == "postgres" {
		return "uuid"
	}
	return fmt.Sprintf("char(%d)", uuidLength)
}
