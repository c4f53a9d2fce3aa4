package marshal

import (
	"math"
	"strconv"
	"strings"

	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

type keyKind uint8

const (
	keyInvalid keyKind = iota
	keyIndex
	keyName
)

// PathSeparator 分隔字符串 key 中的嵌套路径段。
const PathSeparator = "."

// Key 是字段 key，取值为整数下标或字符串名。
// 零值 Key 无效，解析时会被当作契约错误拒绝。Key 可比较，可作为 map 的键。
type Key struct {
	kind  keyKind
	index int
	name  string
}

// IndexKey 返回整数下标 key，只会尝试元素访问。
func IndexKey(i int) Key {
	return Key{kind: keyIndex, index: i}
}

// NameKey 返回字符串 key，name 可以是 "address.city" 形式的嵌套路径。
func NameKey(name string) Key {
	return Key{kind: keyName, name: name}
}

// KeyOf 把 Go 值转换为 Key。
// 支持各类整数、string 以及 Key 本身，其余类型返回 merr.ErrKeyUnsupported。
func KeyOf(v any) (Key, error) {
	switch k := v.(type) {
	case Key:
		if !k.Valid() {
			return Key{}, merr.WrapErrKeyUnsupported(k, "zero key")
		}
		return k, nil
	case string:
		return NameKey(k), nil
	case int:
		return IndexKey(k), nil
	case int8:
		return IndexKey(int(k)), nil
	case int16:
		return IndexKey(int(k)), nil
	case int32:
		return IndexKey(int(k)), nil
	case int64:
		if k > math.MaxInt || k < math.MinInt {
			return Key{}, merr.WrapErrKeyUnsupported(v, "index overflows int")
		}
		return IndexKey(int(k)), nil
	case uint:
		return uintKey(uint64(k), v)
	case uint8:
		return IndexKey(int(k)), nil
	case uint16:
		return IndexKey(int(k)), nil
	case uint32:
		return uintKey(uint64(k), v)
	case uint64:
		return uintKey(k, v)
	default:
		return Key{}, merr.WrapErrKeyUnsupported(v)
	}
}

func uintKey(u uint64, raw any) (Key, error) {
	if u > math.MaxInt {
		return Key{}, merr.WrapErrKeyUnsupported(raw, "index overflows int")
	}
	return IndexKey(int(u)), nil
}

func (k Key) Valid() bool   { return k.kind != keyInvalid }
func (k Key) IsIndex() bool { return k.kind == keyIndex }
func (k Key) IsName() bool  { return k.kind == keyName }

// Index 返回整数下标，非下标 key 返回 0。
func (k Key) Index() int { return k.index }

// Name 返回字符串名，非字符串 key 返回空串。
func (k Key) Name() string { return k.name }

// Segments 返回字符串 key 按 PathSeparator 切分后的路径段。
func (k Key) Segments() []string {
	if k.kind != keyName {
		return nil
	}
	return strings.Split(k.name, PathSeparator)
}

// String 返回输出记录中使用的键名。
func (k Key) String() string {
	switch k.kind {
	case keyIndex:
		return strconv.Itoa(k.index)
	case keyName:
		return k.name
	default:
		return "<invalid>"
	}
}

// withPrefix 只作用于字符串 key，整数 key 原样返回。
func (k Key) withPrefix(prefix string) Key {
	if prefix == "" || k.kind != keyName {
		return k
	}
	return NameKey(prefix + k.name)
}
