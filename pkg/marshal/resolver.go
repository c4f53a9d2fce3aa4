package marshal

import (
	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

// Resolver 根据 key 在源对象上查找待序列化的值，找不到时返回 def。
// 只有契约错误（例如无效 key）才返回 error，查找失败从不返回 error。
type Resolver interface {
	Resolve(key Key, obj any, def any) (any, error)
}

// ResolverFunc 把普通函数适配为 Resolver。
type ResolverFunc func(key Key, obj any, def any) (any, error)

func (f ResolverFunc) Resolve(key Key, obj any, def any) (any, error) {
	return f(key, obj, def)
}

type defaultResolver struct{}

func (defaultResolver) Resolve(key Key, obj any, def any) (any, error) {
	return Resolve(key, obj, def)
}

// DefaultResolver 为默认的查找策略，行为同 Resolve。
var DefaultResolver Resolver = defaultResolver{}

// Lookup 在 obj 上查找 key。
//
// 整数 key 只做一次元素访问，不回退到属性访问。字符串 key 按 "." 切分，
// 每一段先尝试元素访问，失败再尝试属性访问，两者都失败则整体未命中，
// 不会返回中间结果。
func Lookup(key Key, obj any) (any, bool, error) {
	switch key.kind {
	case keyIndex:
		v, ok := GetItem(obj, key.index)
		return v, ok, nil
	case keyName:
		current := obj
		for _, segment := range key.Segments() {
			next, ok := lookupSegment(current, segment)
			if !ok {
				return nil, false, nil
			}
			current = next
		}
		return current, true, nil
	default:
		return nil, false, merr.WrapErrKeyUnsupported(key, "resolve")
	}
}

// Resolve 与 Lookup 相同，未命中时返回 def。
func Resolve(key Key, obj any, def any) (any, error) {
	v, ok, err := Lookup(key, obj)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func lookupSegment(obj any, segment string) (any, bool) {
	if v, ok := GetItem(obj, segment); ok {
		return v, true
	}
	return GetAttr(obj, segment)
}
