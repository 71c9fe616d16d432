package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/internal/model"
	"github.com/hello-base/ohashi/internal/model/fields"
)

func InitDB(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		// 使用 github.com/glebarez/sqlite 驱动
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// UUID 主键默认值回调需要在任何写入之前注册
	if err := fields.Setup(db); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.Repository{}, &model.Document{}); err != nil {
		return nil, err
	}
	return db, nil
}

// TableSpec 一张表冻结后的字段描述
type TableSpec struct {
	Table  string        `json:"table"`
	Fields []fields.Spec `json:"fields"`
}

// FreezeSchemas 用内省规则冻结全部模型的字段参数，供迁移工具比较差异
func FreezeSchemas(rules *fields.Rules) ([]TableSpec, error) {
	if rules == nil {
		rules = fields.DefaultRules()
	}
	schemas := model.Schemas()
	tables := []string{"documents", "repositories"}

	out := make([]TableSpec, 0, len(tables))
	for _, table := range tables {
		specs, err := rules.Freeze(schemas[table])
		if err != nil {
			return nil, fmt.Errorf("freeze %s: %w", table, err)
		}
		klog.V(6).Infof("冻结字段描述: table=%s, fields=%d", table, len(specs))
		out = append(out, TableSpec{Table: table, Fields: specs})
	}
	return out, nil
}
