package log

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	FieldNameModule    = "module"
	FieldNameComponent = "component"
	FieldNameKey       = "key"
	FieldNameIndex     = "index"
	FieldNameMode      = "mode"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldKey 返回字段键，键可能是下标也可能是点分路径，统一按字符串输出。
func FieldKey(key fmt.Stringer) zap.Field {
	return zap.Stringer(FieldNameKey, key)
}

// FieldIndex 返回批量模式下元素下标字段。
func FieldIndex(index int) zap.Field {
	return zap.Int(FieldNameIndex, index)
}

// FieldMode 返回 single / many 模式字段。
func FieldMode(many bool) zap.Field {
	if many {
		return zap.String(FieldNameMode, "many")
	}
	return zap.String(FieldNameMode, "single")
}
