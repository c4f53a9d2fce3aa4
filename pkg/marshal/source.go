package marshal

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/viant/xunsafe"
)

// ItemGetter 表示支持元素访问（按 key 取值）的源对象。
// key 为 int（整数 key）或 string（路径段）。
type ItemGetter interface {
	TryGetItem(key any) (any, bool)
}

// AttrGetter 表示支持属性访问（按名字取成员）的源对象。
// 需要计算得到的属性（方法、派生值）由源对象通过 AttrGetter 自行提供。
type AttrGetter interface {
	TryGetAttr(name string) (any, bool)
}

// Source 同时支持两种访问方式。实现了 Source（或其中一半）的对象不再走反射适配。
type Source interface {
	ItemGetter
	AttrGetter
}

// GetItem 对 obj 做一次元素访问。
//
// 反射适配规则：map 会把 key 转换为 map 的键类型后查找；slice / array 只接受 int，
// 负数从末尾开始计数；指针和 interface 会被解引用，nil 视为未命中。
// 任何 panic 都视为未命中。
func GetItem(obj any, key any) (value any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			value, ok = nil, false
		}
	}()

	switch src := obj.(type) {
	case nil:
		return nil, false
	case ItemGetter:
		return src.TryGetItem(key)
	case map[string]any:
		name, isName := key.(string)
		if !isName {
			return nil, false
		}
		value, ok = src[name]
		return value, ok
	case []any:
		i, isIndex := key.(int)
		if !isIndex {
			return nil, false
		}
		return sliceIndex(len(src), i, func(n int) any { return src[n] })
	}

	rv, ok := indirect(reflect.ValueOf(obj))
	if !ok {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Map:
		mk, ok := mapKey(rv.Type().Key(), key)
		if !ok {
			return nil, false
		}
		v := rv.MapIndex(mk)
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		i, isIndex := key.(int)
		if !isIndex {
			return nil, false
		}
		return sliceIndex(rv.Len(), i, func(n int) any { return rv.Index(n).Interface() })
	default:
		return nil, false
	}
}

// GetAttr 对 obj 做一次属性访问。
//
// 反射适配只读取导出的结构体字段（marshal tag、json tag、字段名、首字母大写后的字段名），
// 提升字段经过 nil 内嵌指针时视为未命中。方法不会被调用，取值不会修改源对象。
// 任何 panic 都视为未命中。
func GetAttr(obj any, name string) (value any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			value, ok = nil, false
		}
	}()

	switch src := obj.(type) {
	case nil:
		return nil, false
	case AttrGetter:
		return src.TryGetAttr(name)
	}

	rv := reflect.ValueOf(obj)
	base, ok := indirect(rv)
	if !ok || base.Kind() != reflect.Struct {
		return nil, false
	}

	f, found := attrPlanOf(base.Type()).lookup(name)
	if !found {
		return nil, false
	}
	if f.direct != nil && rv.Kind() == reflect.Pointer && rv.Type().Elem() == base.Type() {
		return f.direct.Value(xunsafe.AsPointer(obj)), true
	}
	fv, err := base.FieldByIndexErr(f.index)
	if err != nil {
		return nil, false
	}
	return fv.Interface(), true
}

func sliceIndex(n, i int, at func(int) any) (any, bool) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, false
	}
	return at(i), true
}

// indirect 解开指针和 interface，遇到 nil 返回 false。
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func mapKey(kt reflect.Type, key any) (reflect.Value, bool) {
	kv := reflect.ValueOf(key)
	if !kv.IsValid() {
		return reflect.Value{}, false
	}
	if kv.Type().AssignableTo(kt) {
		return kv, true
	}
	switch k := key.(type) {
	case string:
		if kt.Kind() == reflect.String {
			return kv.Convert(kt), true
		}
	case int:
		switch kt.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			mk := reflect.New(kt).Elem()
			if mk.OverflowInt(int64(k)) {
				return reflect.Value{}, false
			}
			mk.SetInt(int64(k))
			return mk, true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			mk := reflect.New(kt).Elem()
			if k < 0 || mk.OverflowUint(uint64(k)) {
				return reflect.Value{}, false
			}
			mk.SetUint(uint64(k))
			return mk, true
		}
	}
	return reflect.Value{}, false
}

func nameCandidates(name string) []string {
	upper := upperFirst(name)
	if upper == name {
		return []string{name}
	}
	return []string{name, upper}
}

func upperFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

type attrField struct {
	index  []int
	direct *xunsafe.Field
}

type attrPlan struct {
	byTag  map[string]attrField
	byName map[string]attrField
}

var attrPlans sync.Map // reflect.Type -> *attrPlan

func attrPlanOf(t reflect.Type) *attrPlan {
	if plan, ok := attrPlans.Load(t); ok {
		return plan.(*attrPlan)
	}
	plan, _ := attrPlans.LoadOrStore(t, buildAttrPlan(t))
	return plan.(*attrPlan)
}

func (p *attrPlan) lookup(name string) (attrField, bool) {
	if f, ok := p.byTag[name]; ok {
		return f, true
	}
	for _, candidate := range nameCandidates(name) {
		if f, ok := p.byName[candidate]; ok {
			return f, true
		}
	}
	return attrField{}, false
}

func buildAttrPlan(t reflect.Type) *attrPlan {
	plan := &attrPlan{
		byTag:  make(map[string]attrField),
		byName: make(map[string]attrField),
	}
	tagDepth := make(map[string]int)
	nameDepth := make(map[string]int)

	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() {
			continue
		}
		f := attrField{index: sf.Index}
		if len(sf.Index) == 1 {
			f.direct = xunsafe.NewField(sf)
		}
		depth := len(sf.Index)
		register(plan.byName, nameDepth, sf.Name, depth, f)
		if tag := tagName(sf.Tag.Get("marshal")); tag != "" {
			register(plan.byTag, tagDepth, tag, depth, f)
		} else if tag := tagName(sf.Tag.Get("json")); tag != "" {
			register(plan.byTag, tagDepth, tag, depth, f)
		}
	}
	return plan
}

// register 按深度登记字段：浅层覆盖深层，同一深度重名则两者都不可见。
func register(dst map[string]attrField, depths map[string]int, name string, depth int, f attrField) {
	if prev, ok := depths[name]; ok {
		switch {
		case prev < depth:
			return
		case prev == depth:
			delete(dst, name)
			return
		}
	}
	depths[name] = depth
	dst[name] = f
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
