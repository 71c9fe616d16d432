package fields

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"k8s.io/klog/v2"
)

// CandidateSet 提供外键允许取值的候选集合
type CandidateSet interface {
	Queryset(db *gorm.DB) *gorm.DB
}

// ScopeSet 将 GORM scope 适配为 CandidateSet
type ScopeSet func(db *gorm.DB) *gorm.DB

func (s ScopeSet) Queryset(db *gorm.DB) *gorm.DB {
	return s(db)
}

// ReadRouter 决定读取关联模型时使用的连接
type ReadRouter interface {
	DBForRead(db *gorm.DB, model any, instance any) *gorm.DB
}

// DefaultRouter 直接使用传入的连接
type DefaultRouter struct{}

func (DefaultRouter) DBForRead(db *gorm.DB, model any, instance any) *gorm.DB {
	return db
}

// ForeignKey 外键字段，可绑定自定义候选集合
type ForeignKey struct {
	Name           string
	Related        any
	VerboseName    string
	FieldName      string
	LimitChoicesTo map[string]any
	ParentLink     bool
	Null           bool
	Manager        CandidateSet
	Router         ReadRouter
}

// ForeignKeyOption 外键声明选项
type ForeignKeyOption func(*ForeignKey)

// WithManager 绑定自定义候选集合
func WithManager(manager CandidateSet) ForeignKeyOption {
	return func(fk *ForeignKey) { fk.Manager = manager }
}

func WithLimitChoicesTo(cond map[string]any) ForeignKeyOption {
	return func(fk *ForeignKey) { fk.LimitChoicesTo = cond }
}

func WithParentLink() ForeignKeyOption {
	return func(fk *ForeignKey) { fk.ParentLink = true }
}

func WithRouter(router ReadRouter) ForeignKeyOption {
	return func(fk *ForeignKey) { fk.Router = router }
}

func WithVerboseName(name string) ForeignKeyOption {
	return func(fk *ForeignKey) { fk.VerboseName = name }
}

func WithToField(column string) ForeignKeyOption {
	return func(fk *ForeignKey) { fk.FieldName = column }
}

func WithNullable() ForeignKeyOption {
	return func(fk *ForeignKey) { fk.Null = true }
}

// NewCustomManagerForeignKey 创建外键字段
func NewCustomManagerForeignKey(name string, related any, opts ...ForeignKeyOption) *ForeignKey {
	fk := &ForeignKey{Name: name, Related: related, FieldName: "id"}
	for _, opt := range opts {
		opt(fk)
	}
	if fk.VerboseName == "" {
		fk.VerboseName = verboseName(related)
	}
	if fk.Router == nil {
		fk.Router = DefaultRouter{}
	}
	return fk
}

// Validate 校验外键取值是否存在于候选集合中
// 父链接不校验；空值总是合法；配置了自定义集合时在该集合内查找，否则在关联模型的默认集合内查找
func (fk *ForeignKey) Validate(ctx context.Context, db *gorm.DB, value any, instance any) error {
	if fk.ParentLink {
		return nil
	}
	if isNull(value) {
		return nil
	}

	qs := fk.candidates(ctx, db, instance)
	qs = qs.Where(clause.Eq{Column: clause.Column{Name: fk.FieldName}, Value: value})
	if len(fk.LimitChoicesTo) > 0 {
		qs = qs.Where(fk.LimitChoicesTo)
	}

	var count int64
	if err := qs.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		klog.V(6).Infof("ForeignKey %s: %v not found in candidate set of %s", fk.Name, value, fk.VerboseName)
		return &ValidationError{
			Field:   fk.Name,
			Code:    CodeInvalid,
			Message: fmt.Sprintf(ErrorMessages[CodeInvalid], fk.VerboseName, displayValue(value)),
			Params:  map[string]any{"model": fk.VerboseName, "pk": value},
		}
	}
	return nil
}

func (fk *ForeignKey) candidates(ctx context.Context, db *gorm.DB, instance any) *gorm.DB {
	if fk.Manager != nil {
		return fk.Manager.Queryset(db.WithContext(ctx)).Model(fk.Related)
	}
	router := fk.Router
	if router == nil {
		router = DefaultRouter{}
	}
	return router.DBForRead(db, fk.Related, instance).WithContext(ctx).Model(fk.Related)
}

// FormField 返回下拉表单表示，配置了自定义集合时以其为候选
func (fk *ForeignKey) FormField(overrides ...FormOption) *FormField {
	ff := &FormField{
		Name:      fk.Name,
		FormClass: FormModelChoiceField,
		Widget:    WidgetSelect,
		Required:  !fk.Null,
		Model:     fk.Related,
	}
	if fk.Manager != nil {
		ff.Queryset = fk.Manager
	} else if len(fk.LimitChoicesTo) > 0 {
		limit := fk.LimitChoicesTo
		ff.Queryset = ScopeSet(func(db *gorm.DB) *gorm.DB { return db.Where(limit) })
	}
	for _, opt := range overrides {
		opt(ff)
	}
	return ff
}

// Path 内省路径
func (fk *ForeignKey) Path() string {
	return PathPrefix + string(KindForeignKey)
}

// Attr 外键没有额外捕获的参数
func (fk *ForeignKey) Attr(name string) (any, bool) {
	switch name {
	case "null":
		return fk.Null, true
	case "to_field":
		return fk.FieldName, true
	}
	return nil, false
}

func isNull(value any) bool {
	if value == nil {
		return true
	}
	if valuer, ok := value.(driver.Valuer); ok {
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return true
		}
		v, err := valuer.Value()
		return err == nil && v == nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func displayValue(value any) any {
	if s, ok := value.(fmt.Stringer); ok {
		return s.String()
	}
	return value
}

// verboseName 由类型名推导展示名，如 DocumentTemplate -> document template
func verboseName(model any) string {
	t := reflect.TypeOf(model)
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	var b strings.Builder
	for i, r := range t.Name() {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
