package marshal

type missing struct{}

func (missing) String() string { return "<marshal.missing>" }

// MarshalJSON 让 Missing 在输出中编码为 null。
func (missing) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Missing 表示值缺失的默认标记，与 nil 区分开：nil 表示值存在但为空。
var Missing any = missing{}

// IsMissing 判断 v 是否为 Missing。
func IsMissing(v any) bool {
	_, ok := v.(missing)
	return ok
}
