package views

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

// ErrNotFound 对象或分页不存在
var ErrNotFound = errors.New("not found")

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// DetailView 按路由参数加载单个对象并渲染，上下文键为 object
type DetailView struct {
	PJAXResponse

	// PKParam 路由参数名，默认 id
	PKParam string

	// ContextObjectName 额外的上下文键，如 repository
	ContextObjectName string

	GetObject func(c *gin.Context, pk string) (any, error)
}

func (v *DetailView) Handle(c *gin.Context) {
	param := v.PKParam
	if param == "" {
		param = "id"
	}

	obj, err := v.GetObject(c, c.Param(param))
	if err != nil {
		if isNotFound(err) {
			c.String(http.StatusNotFound, "not found")
			return
		}
		klog.Errorf("views: load object %s=%s failed: %v", param, c.Param(param), err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	data := gin.H{"object": obj}
	if v.ContextObjectName != "" {
		data[v.ContextObjectName] = obj
	}
	v.RenderToResponse(c, v.ContextData(c, data))
}

// Page 分页信息
type Page struct {
	Number   int
	NumPages int
	PerPage  int
	Count    int64
}

func (p Page) HasNext() bool       { return p.Number < p.NumPages }
func (p Page) HasPrevious() bool   { return p.Number > 1 }
func (p Page) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }
func (p Page) NextNumber() int     { return p.Number + 1 }
func (p Page) PreviousNumber() int { return p.Number - 1 }

// Offset 当前页第一条记录的偏移
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Paginate 计算第 number 页；"last" 表示最后一页，越界或非数字返回 ErrNotFound
func Paginate(count int64, perPage int, number string) (Page, error) {
	numPages := 1
	if count > 0 {
		numPages = int(math.Ceil(float64(count) / float64(perPage)))
	}

	n := 1
	switch number {
	case "":
	case "last":
		n = numPages
	default:
		parsed, err := strconv.Atoi(number)
		if err != nil {
			return Page{}, ErrNotFound
		}
		n = parsed
	}
	if n < 1 || n > numPages {
		return Page{}, ErrNotFound
	}
	return Page{Number: n, NumPages: numPages, PerPage: perPage, Count: count}, nil
}

// ListView 渲染对象列表，上下文键为 object_list；PaginateBy 大于 0 时按 page 查询参数分页
type ListView struct {
	PJAXResponse

	ContextObjectName string
	PaginateBy        int

	// Count 分页时统计总数
	Count func(c *gin.Context) (int64, error)

	// List limit 为 -1 表示不限制
	List func(c *gin.Context, offset, limit int) (any, error)
}

func (v *ListView) Handle(c *gin.Context) {
	data := gin.H{"is_paginated": false}
	offset, limit := 0, -1

	if v.PaginateBy > 0 {
		count, err := v.Count(c)
		if err != nil {
			klog.Errorf("views: count objects failed: %v", err)
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		page, err := Paginate(count, v.PaginateBy, c.Query("page"))
		if err != nil {
			c.String(http.StatusNotFound, "invalid page")
			return
		}
		offset, limit = page.Offset(), v.PaginateBy
		data["page_obj"] = page
		data["is_paginated"] = page.HasOtherPages()
	}

	objects, err := v.List(c, offset, limit)
	if err != nil {
		klog.Errorf("views: list objects failed: %v", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	data["object_list"] = objects
	if v.ContextObjectName != "" {
		data[v.ContextObjectName] = objects
	}
	v.RenderToResponse(c, v.ContextData(c, data))
}

// TemplateView 直接渲染模板，上下文 params 为全部路由参数
type TemplateView struct {
	PJAXResponse
}

func (v *TemplateView) Handle(c *gin.Context) {
	params := gin.H{}
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	v.RenderToResponse(c, v.ContextData(c, gin.H{"params": params}))
}
