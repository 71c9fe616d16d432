package fields

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

// 表单控件与表单类
const (
	WidgetTextInput   = "TextInput"
	WidgetHiddenInput = "HiddenInput"
	WidgetSelect      = "Select"

	FormCharField        = "CharField"
	FormEmailField       = "EmailField"
	FormSlugField        = "SlugField"
	FormURLField         = "URLField"
	FormModelChoiceField = "ModelChoiceField"
)

var (
	emailRe = regexp.MustCompile(`(?i)^[-!#$%&'*+/=?^_` + "`" + `{}|~0-9A-Z]+(\.[-!#$%&'*+/=?^_` + "`" + `{}|~0-9A-Z]+)*@(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?$`)
	slugRe  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// FormField 字段的默认表单表示
type FormField struct {
	Name         string
	FormClass    string
	Widget       string
	MaxLength    int
	Required     bool
	Initial      any
	VerifyExists bool

	// 仅 ModelChoiceField 使用
	Model    any
	Queryset CandidateSet
}

// FormOption 调用方对表单表示的覆盖
type FormOption func(*FormField)

func WithFormClass(class string) FormOption {
	return func(ff *FormField) { ff.FormClass = class }
}

func WithWidget(widget string) FormOption {
	return func(ff *FormField) { ff.Widget = widget }
}

func WithRequired(required bool) FormOption {
	return func(ff *FormField) { ff.Required = required }
}

func WithInitial(v any) FormOption {
	return func(ff *FormField) { ff.Initial = v }
}

func WithVerifyExists(verify bool) FormOption {
	return func(ff *FormField) { ff.VerifyExists = verify }
}

func WithQueryset(qs CandidateSet) FormOption {
	return func(ff *FormField) { ff.Queryset = qs }
}

// FormField 构建表单表示：先应用类型默认值，再应用调用方覆盖
// 不可编辑的字段没有表单表示，返回 nil
func (f *Field) FormField(overrides ...FormOption) *FormField {
	if !f.Editable {
		return nil
	}

	ff := &FormField{
		Name:      f.Name,
		FormClass: FormCharField,
		Widget:    WidgetTextInput,
		MaxLength: f.MaxLength,
		Required:  !f.Blank,
	}
	if f.HasDefault() {
		ff.Initial = f.DefaultValue()
	}

	switch f.Kind {
	case KindEmail:
		ff.FormClass = FormEmailField
	case KindSlug:
		ff.FormClass = FormSlugField
	case KindURL:
		ff.FormClass = FormURLField
		ff.VerifyExists = f.VerifyExists
	}

	for _, opt := range overrides {
		opt(ff)
	}
	return ff
}

// Clean 按表单类校验输入值
func (ff *FormField) Clean(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if ff.Required {
			return newValidationError(ff.Name, CodeRequired, ErrorMessages[CodeRequired], nil)
		}
		return nil
	}
	if n := utf8.RuneCountInString(value); ff.MaxLength > 0 && n > ff.MaxLength {
		return maxLengthExceeded(ff.Name, ff.MaxLength, n)
	}

	switch ff.FormClass {
	case FormEmailField:
		if !emailRe.MatchString(value) {
			return invalidValue(ff.Name, "Enter a valid e-mail address.", value)
		}
	case FormSlugField:
		if !slugRe.MatchString(value) {
			return invalidValue(ff.Name, "Enter a valid 'slug' consisting of letters, numbers, underscores or hyphens.", value)
		}
	case FormURLField:
		if !validURL(value) {
			return invalidValue(ff.Name, "Enter a valid URL.", value)
		}
	}
	return nil
}

// Choices 加载下拉候选项
func (ff *FormField) Choices(ctx context.Context, db *gorm.DB, dest any) error {
	tx := db.WithContext(ctx)
	if ff.Queryset != nil {
		tx = ff.Queryset.Queryset(tx)
	}
	if ff.Model != nil {
		tx = tx.Model(ff.Model)
	}
	return tx.Find(dest).Error
}

func validURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp", "ftps":
		return true
	}
	return false
}

// CleanAll 校验一组字段，收集所有错误
func CleanAll(values map[string]string, forms ...*FormField) error {
	var errs ValidationErrors
	for _, ff := range forms {
		if ff == nil {
			continue
		}
		if err := ff.Clean(values[ff.Name]); err != nil {
			if ve, ok := err.(*ValidationError); ok {
				errs = append(errs, ve)
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
