package fields

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Char 变长字符串列，size 标签决定 varchar 长度，未指定时为 text
type Char string

func (Char) GormDataType() string { return string(schema.String) }

func (Char) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return charColumnType(field.Size)
}

func (c *Char) Scan(src any) error { return scanString((*string)(c), src) }

func (c Char) Value() (driver.Value, error) { return string(c), nil }

// Email 邮箱列
type Email string

func (Email) GormDataType() string { return string(schema.String) }

func (Email) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return charColumnType(sizeOr(field, defaultEmailLength))
}

func (e *Email) Scan(src any) error { return scanString((*string)(e), src) }

func (e Email) Value() (driver.Value, error) { return string(e), nil }

// Validate 校验邮箱格式，空值视为合法
func (e Email) Validate() error {
	if e == "" || emailRe.MatchString(string(e)) {
		return nil
	}
	return invalidValue("", "Enter a valid e-mail address.", string(e))
}

// Slug slug 列，需配合 index 标签使用
type Slug string

func (Slug) GormDataType() string { return string(schema.String) }

func (Slug) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return charColumnType(sizeOr(field, defaultSlugLength))
}

func (s *Slug) Scan(src any) error { return scanString((*string)(s), src) }

func (s Slug) Value() (driver.Value, error) { return string(s), nil }

func (s Slug) Validate() error {
	if s == "" || slugRe.MatchString(string(s)) {
		return nil
	}
	return invalidValue("", "Enter a valid 'slug' consisting of letters, numbers, underscores or hyphens.", string(s))
}

// URL 地址列
type URL string

func (URL) GormDataType() string { return string(schema.String) }

func (URL) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return charColumnType(sizeOr(field, defaultURLLength))
}

func (u *URL) Scan(src any) error { return scanString((*string)(u), src) }

func (u URL) Value() (driver.Value, error) { return string(u), nil }

func (u URL) Validate() error {
	if u == "" || validURL(string(u)) {
		return nil
	}
	return invalidValue("", "Enter a valid URL.", string(u))
}

// UUID 以 36 位文本存储的 UUID 列，零值写入为 NULL
type UUID uuid.UUID

// NewUUID 生成新的随机 UUID
func NewUUID() UUID {
	return UUID(uuid.New())
}

// ParseUUID 解析 UUID 文本
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, err
	}
	return UUID(u), nil
}

func (u UUID) String() string { return uuid.UUID(u).String() }

func (u UUID) IsZero() bool { return u == UUID{} }

func (UUID) GormDataType() string { return "uuid" }

func (UUID) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return uuidColumnType(db.Dialector.Name())
}

func (u *UUID) Scan(src any) error {
	if src == nil {
		*u = UUID{}
		return nil
	}
	return (*uuid.UUID)(u).Scan(src)
}

func (u UUID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.String(), nil
}

func (u UUID) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(u.String())
}

func (u *UUID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*u = UUID{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*u = UUID{}
		return nil
	}
	parsed, err := ParseUUID(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func scanString(dst *string, src any) error {
	switch v := src.(type) {
	case nil:
		*dst = ""
	case string:
		*dst = v
	case []byte:
		*dst = string(v)
	default:
		return fmt.Errorf("cannot scan %T into string column", src)
	}
	return nil
}

func sizeOr(field *schema.Field, fallback int) int {
	if field != nil && field.Size > 0 {
		return field.Size
	}
	return fallback
}
