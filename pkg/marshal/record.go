package marshal

import (
	jsoniter "github.com/json-iterator/go"
)

var recordJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Record 是有序的 key -> value 映射，用于输出记录和错误记录。
// 对同一个 key 再次 Set 会覆盖值但保留原位置。
type Record struct {
	keys   []Key
	values map[Key]any
}

func NewRecord(capacity int) *Record {
	return &Record{
		keys:   make([]Key, 0, capacity),
		values: make(map[Key]any, capacity),
	}
}

func (r *Record) Set(key Key, value any) {
	if r.values == nil {
		r.values = make(map[Key]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Record) Get(key Key) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has 判断记录中是否存在 key。
func (r *Record) Has(key Key) bool {
	_, ok := r.Get(key)
	return ok
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

func (r *Record) Keys() []Key {
	if r == nil {
		return nil
	}
	return append([]Key(nil), r.keys...)
}

// Range 按插入顺序遍历，fn 返回 false 时停止。
func (r *Record) Range(fn func(key Key, value any) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// ToMap 转换为以 Key.String() 为键的普通 map，顺序信息丢失。
func (r *Record) ToMap() map[string]any {
	m := make(map[string]any, r.Len())
	r.Range(func(key Key, value any) bool {
		m[key.String()] = value
		return true
	})
	return m
}

// MarshalJSON 按插入顺序输出 JSON 对象。
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	stream := recordJSON.BorrowStream(nil)
	defer recordJSON.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, k := range r.keys {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(k.String())
		stream.WriteVal(r.values[k])
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func (r *Record) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return "<record: " + err.Error() + ">"
	}
	return string(data)
}
