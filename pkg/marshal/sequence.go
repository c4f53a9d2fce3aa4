package marshal

import (
	"reflect"

	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

// Sequence 是批量模式接受的有序、有限、可按下标访问的源集合。
// Go 的 slice / array 会被自动适配。
type Sequence interface {
	Len() int
	At(i int) any
}

type anySlice []any

func (s anySlice) Len() int     { return len(s) }
func (s anySlice) At(i int) any { return s[i] }

type reflectSequence struct {
	v reflect.Value
}

func (s reflectSequence) Len() int     { return s.v.Len() }
func (s reflectSequence) At(i int) any { return s.v.Index(i).Interface() }

func sequenceOf(src any) (Sequence, error) {
	switch s := src.(type) {
	case Sequence:
		return s, nil
	case []any:
		return anySlice(s), nil
	}
	rv, ok := indirect(reflect.ValueOf(src))
	if ok && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		return reflectSequence{v: rv}, nil
	}
	return nil, merr.WrapErrSourceNotSequence(src)
}
