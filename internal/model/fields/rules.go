package fields

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"
)

// ErrNoIntrospectionRule 字段类型未注册内省规则
var ErrNoIntrospectionRule = errors.New("no introspection rule for field")

// Describer 可被迁移工具内省的字段
type Describer interface {
	Path() string
	Attr(name string) (any, bool)
}

// Param 一个被捕获的参数：读取的属性名及其默认值（等于默认值时不输出）
type Param struct {
	Attr    string
	Default any
}

// Rule 一条内省规则
type Rule struct {
	Params map[string]Param
}

// Spec 字段的冻结描述，供 schema diff 使用
type Spec struct {
	Name string
	Path string
	Args map[string]any
}

type ruleEntry struct {
	pattern *regexp.Regexp
	rules   []Rule
}

// Rules 内省规则注册表
type Rules struct {
	mu      sync.RWMutex
	entries []ruleEntry
}

// NewRules 创建空注册表
func NewRules() *Rules {
	return &Rules{}
}

// DefaultRules 返回包含内置字段类型的注册表
func DefaultRules() *Rules {
	r := NewRules()
	common := Rule{Params: map[string]Param{
		"max_length": {Attr: "max_length", Default: 0},
		"null":       {Attr: "null", Default: false},
		"blank":      {Attr: "blank", Default: false},
		"db_index":   {Attr: "db_index", Default: false},
	}}
	must(r.AddIntrospectionRules([]Rule{common}, []string{`^ohashi\.db\.fields\.(Char|Email|Slug)Field$`}))
	must(r.AddIntrospectionRules([]Rule{common, {Params: map[string]Param{
		"verify_exists": {Attr: "verify_exists", Default: true},
	}}}, []string{`^ohashi\.db\.fields\.URLField$`}))
	must(r.AddIntrospectionRules([]Rule{{Params: map[string]Param{
		"auto":        {Attr: "auto", Default: false},
		"primary_key": {Attr: "primary_key", Default: false},
	}}}, []string{`^ohashi\.db\.fields\.UUIDField$`}))
	must(r.AddIntrospectionRules(nil, []string{`^ohashi\.db\.fields\.CustomManagerForeignKey`}))
	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// AddIntrospectionRules 为匹配 patterns 的字段注册规则
func (r *Rules) AddIntrospectionRules(rules []Rule, patterns []string) error {
	compiled := make([]ruleEntry, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("compile introspection pattern %q: %w", p, err)
		}
		compiled = append(compiled, ruleEntry{pattern: re, rules: rules})
	}
	r.mu.Lock()
	r.entries = append(r.entries, compiled...)
	r.mu.Unlock()
	return nil
}

// Introspect 返回字段被捕获的参数
func (r *Rules) Introspect(name string, f Describer) (Spec, error) {
	path := f.Path()
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := false
	args := map[string]any{}
	for _, entry := range r.entries {
		if !entry.pattern.MatchString(path) {
			continue
		}
		matched = true
		for _, rule := range entry.rules {
			for key, param := range rule.Params {
				v, ok := f.Attr(param.Attr)
				if !ok || reflect.DeepEqual(v, param.Default) {
					continue
				}
				args[key] = v
			}
		}
	}
	if !matched {
		return Spec{}, fmt.Errorf("%w: %s (%s)", ErrNoIntrospectionRule, name, path)
	}
	return Spec{Name: name, Path: path, Args: args}, nil
}

// Freeze 冻结一组字段描述，按字段名排序
func (r *Rules) Freeze(described map[string]Describer) ([]Spec, error) {
	names := make([]string, 0, len(described))
	for name := range described {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		spec, err := r.Introspect(name, described[name])
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
