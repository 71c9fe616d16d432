package fields

import (
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"k8s.io/klog/v2"
)

const uuidDefaultCallback = "ohashi:uuid_default"

var uuidType = reflect.TypeOf(UUID{})

// Setup 在给定连接上注册字段类型适配：创建记录前为零值 UUID 主键生成新值
// 需要在应用启动阶段显式调用一次，重复调用不会重复注册
func Setup(db *gorm.DB) error {
	create := db.Callback().Create()
	if create.Get(uuidDefaultCallback) != nil {
		return nil
	}
	if err := create.Before("gorm:create").Register(uuidDefaultCallback, fillUUIDPrimaryKeys); err != nil {
		return err
	}
	klog.V(6).Infof("fields: registered %s callback", uuidDefaultCallback)
	return nil
}

func fillUUIDPrimaryKeys(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement.Schema == nil {
		return
	}

	var pks []*schema.Field
	for _, field := range tx.Statement.Schema.PrimaryFields {
		if field.FieldType == uuidType {
			pks = append(pks, field)
		}
	}
	if len(pks) == 0 {
		return
	}

	ctx := tx.Statement.Context
	rv := tx.Statement.ReflectValue
	fill := func(obj reflect.Value) {
		for _, field := range pks {
			if _, zero := field.ValueOf(ctx, obj); zero {
				if err := field.Set(ctx, obj, NewUUID()); err != nil {
					tx.AddError(err)
				}
			}
		}
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			fill(reflect.Indirect(rv.Index(i)))
		}
	case reflect.Struct:
		fill(rv)
	}
}
