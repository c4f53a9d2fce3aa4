package marshal

import (
	"strconv"

	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/typeutil"
)

// Field 是字段 key 与其描述符的组合。
type Field struct {
	Key        Key
	Descriptor Descriptor
}

// Fields 是有序的字段描述符映射，插入顺序即输出顺序。
// key 唯一，且输出时的键名（Key.String()）也唯一，IndexKey(0) 与 NameKey("0") 不能共存。
// 调用 Marshal 期间 Fields 只会被读取，可以在多个 goroutine 间共享。
type Fields struct {
	entries []Field
	index   map[Key]int
	names   map[string]Key
}

func NewFields() *Fields {
	return &Fields{
		index: make(map[Key]int),
		names: make(map[string]Key),
	}
}

// Add 追加一个字段，key 支持 KeyOf 接受的类型。
func (f *Fields) Add(key any, d Descriptor) error {
	k, err := KeyOf(key)
	if err != nil {
		return err
	}
	if isNilDescriptor(d) {
		return merr.WrapErrParameterInvalidMsg("descriptor for field %q must not be nil", k.String())
	}
	if f.index == nil {
		f.index = make(map[Key]int)
		f.names = make(map[string]Key)
	}
	if _, ok := f.index[k]; ok {
		return merr.WrapErrDuplicateKey(k)
	}
	if prev, ok := f.names[k.String()]; ok {
		return merr.WrapErrDuplicateKey(k, "renders the same as "+describeKey(prev))
	}
	f.index[k] = len(f.entries)
	f.names[k.String()] = k
	f.entries = append(f.entries, Field{Key: k, Descriptor: d})
	return nil
}

// MustAdd 同 Add，出错时 panic，便于链式声明。
func (f *Fields) MustAdd(key any, d Descriptor) *Fields {
	if err := f.Add(key, d); err != nil {
		panic(err)
	}
	return f
}

func (f *Fields) Get(key Key) (Descriptor, bool) {
	if f == nil {
		return nil, false
	}
	i, ok := f.index[key]
	if !ok {
		return nil, false
	}
	return f.entries[i].Descriptor, true
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Keys 按插入顺序返回所有 key。
func (f *Fields) Keys() []Key {
	keys := make([]Key, 0, f.Len())
	for _, e := range f.Entries() {
		keys = append(keys, e.Key)
	}
	return keys
}

// Entries 按插入顺序返回字段副本。
func (f *Fields) Entries() []Field {
	if f == nil {
		return nil
	}
	return append([]Field(nil), f.entries...)
}

// checkRendered 检查加上前缀后的输出键名是否重复。
func checkRendered(entries []Field, prefix string) error {
	if prefix == "" {
		return nil
	}
	seen := make(map[string]Key, len(entries))
	for _, e := range entries {
		name := e.Key.withPrefix(prefix).String()
		if prev, ok := seen[name]; ok {
			return merr.WrapErrDuplicateKey(name, "prefixed "+describeKey(e.Key)+" renders the same as "+describeKey(prev))
		}
		seen[name] = e.Key
	}
	return nil
}

func describeKey(k Key) string {
	if k.IsIndex() {
		return "index key " + k.String()
	}
	return "name key " + strconv.Quote(k.String())
}

// filter 按 only / exclude 过滤字段，only 为空表示不限制。
func (f *Fields) filter(only, exclude typeutil.Set[Key]) []Field {
	if only.Len() == 0 && exclude.Len() == 0 {
		return f.Entries()
	}
	result := make([]Field, 0, f.Len())
	for _, e := range f.Entries() {
		if only.Len() > 0 && !only.Contain(e.Key) {
			continue
		}
		if exclude.Contain(e.Key) {
			continue
		}
		result = append(result, e)
	}
	return result
}
