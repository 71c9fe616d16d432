package fields

import (
	"fmt"
	"strings"
)

// 错误码
const (
	CodeInvalid   = "invalid"
	CodeRequired  = "required"
	CodeMaxLength = "max_length"
)

// ErrorMessages 默认错误信息模板
var ErrorMessages = map[string]string{
	CodeInvalid:   "Model %s with pk %v does not exist.",
	CodeRequired:  "This field is required.",
	CodeMaxLength: "Ensure this value has at most %d characters (it has %d).",
}

// ValidationError 结构化校验错误
type ValidationError struct {
	Field   string
	Code    string
	Message string
	Params  map[string]any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors 多个字段的校验错误
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ByField 按字段名分组
func (es ValidationErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(es))
	for _, e := range es {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

func newValidationError(field, code, message string, params map[string]any) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message, Params: params}
}

func invalidValue(field, message string, value string) *ValidationError {
	return newValidationError(field, CodeInvalid, message, map[string]any{"value": value})
}

func maxLengthExceeded(field string, limit, got int) *ValidationError {
	return newValidationError(field, CodeMaxLength,
		fmt.Sprintf(ErrorMessages[CodeMaxLength], limit, got),
		map[string]any{"limit_value": limit, "show_value": got})
}
