package marshal

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/marshal-garden-go/pkg/log"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

// assembler 把一个源对象按字段描述符组装为输出记录和错误记录。
// 构造后只读，可被多个 goroutine 同时使用。
type assembler struct {
	fields      []Field
	resolver    Resolver
	prefix      string
	skipMissing bool
}

func newAssembler(fields []Field, opts *options) *assembler {
	return &assembler{
		fields:      fields,
		resolver:    opts.resolver,
		prefix:      opts.prefix,
		skipMissing: opts.skipMissing,
	}
}

// assemble 按字段顺序处理：成功写入 out，校验错误写入 errs 后继续，
// 其它错误立即返回，错误中带有字段 key。
func (a *assembler) assemble(obj any) (out *Record, errs *Record, err error) {
	out = NewRecord(len(a.fields))
	errs = NewRecord(0)
	for _, f := range a.fields {
		outKey := f.Key.withPrefix(a.prefix)
		value, err := a.field(f, obj)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				mergeValidation(errs, outKey, verr)
				continue
			}
			log.Debug("field assembly aborted", log.FieldKey(f.Key), zap.Error(err))
			return nil, nil, merr.WrapErrFieldFatal(f.Key, err)
		}
		if a.skipMissing && (IsMissing(value) || isNil(value)) {
			continue
		}
		out.Set(outKey, value)
	}
	return out, errs, nil
}

func (a *assembler) field(f Field, obj any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, merr.WrapErrDescriptorPanic(f.Key, r)
		}
	}()

	value, err := a.resolver.Resolve(f.Key, obj, Missing)
	if err != nil {
		return nil, err
	}
	return f.Descriptor.Serialize(value, f.Key, obj)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
