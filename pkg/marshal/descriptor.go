package marshal

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

// Descriptor 描述如何序列化一个字段。
//
// value 为解析得到的值，可能是 Missing。返回 *ValidationError 表示该字段校验失败，
// 只影响本字段；返回其它 error 视为致命错误，终止当前记录。
// 同一次调用中 Descriptor 可能被多个 goroutine 并发调用。
type Descriptor interface {
	Serialize(value any, key Key, obj any) (any, error)
}

// DescriptorFunc 把普通函数适配为 Descriptor。
type DescriptorFunc func(value any, key Key, obj any) (any, error)

func (f DescriptorFunc) Serialize(value any, key Key, obj any) (any, error) {
	return f(value, key, obj)
}

// Identity 原样返回解析到的值。
var Identity Descriptor = DescriptorFunc(func(value any, _ Key, _ any) (any, error) {
	return value, nil
})

// Required 在值缺失时返回校验错误，否则交给 next 处理。
func Required(next Descriptor) Descriptor {
	return DescriptorFunc(func(value any, key Key, obj any) (any, error) {
		if IsMissing(value) {
			return nil, NewValidationError("Missing data for required field.")
		}
		return next.Serialize(value, key, obj)
	})
}

// ValidationError 是描述符返回的可恢复错误。
//
// Messages 与 Fields 二选一：Messages 为消息列表，同一字段多次失败时追加；
// Fields 为嵌套结构的错误详情，同一字段再次失败时整体替换。
type ValidationError struct {
	Messages []string
	Fields   map[string]any
}

var _ error = (*ValidationError)(nil)

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// NewNestedValidationError 用于嵌套记录的校验失败，fields 通常是子记录的错误记录。
func NewNestedValidationError(fields map[string]any) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Fields != nil {
		return fmt.Sprintf("%s: %v", merr.ErrFieldValidation.Error(), e.Fields)
	}
	return merr.ErrFieldValidation.Error() + ": " + strings.Join(e.Messages, "; ")
}

// Details 返回写入错误记录的内容，[]string 或 map[string]any。
func (e *ValidationError) Details() any {
	if e.Fields != nil {
		return e.Fields
	}
	return append([]string(nil), e.Messages...)
}

// Is 让 errors.Is(err, merr.ErrFieldValidation) 对校验错误成立。
func (e *ValidationError) Is(target error) bool {
	return merr.Code(target) == merr.Code(merr.ErrFieldValidation)
}

// mergeValidation 按消息列表追加、嵌套详情替换的规则写入错误记录。
func mergeValidation(errs *Record, key Key, verr *ValidationError) {
	mergeDetails(errs, key, verr.Details())
}

func mergeDetails(errs *Record, key Key, details any) {
	messages, isList := details.([]string)
	if !isList {
		errs.Set(key, details)
		return
	}
	if prev, ok := errs.Get(key); ok {
		if prevMessages, ok := prev.([]string); ok {
			merged := make([]string, 0, len(prevMessages)+len(messages))
			errs.Set(key, append(append(merged, prevMessages...), messages...))
			return
		}
	}
	errs.Set(key, append([]string(nil), messages...))
}

func isNilDescriptor(d Descriptor) bool {
	return isNil(d)
}
