package marshal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOrder(t *testing.T) {
	r := NewRecord(0)
	r.Set(NameKey("b"), 1)
	r.Set(NameKey("a"), 2)
	r.Set(NameKey("b"), 3)

	assert.Equal(t, []Key{NameKey("b"), NameKey("a")}, r.Keys())
	assert.Equal(t, 2, r.Len())
	v, ok := r.Get(NameKey("b"))
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.True(t, r.Has(NameKey("a")))
	assert.Equal(t, map[string]any{"a": 2, "b": 3}, r.ToMap())

	var visited []Key
	r.Range(func(key Key, _ any) bool {
		visited = append(visited, key)
		return false
	})
	assert.Equal(t, []Key{NameKey("b")}, visited)
}

func TestRecordJSON(t *testing.T) {
	inner := NewRecord(1)
	inner.Set(NameKey("city"), "Lagos")

	r := NewRecord(3)
	r.Set(NameKey("z"), 1)
	r.Set(IndexKey(0), []string{"x"})
	r.Set(NameKey("address"), inner)
	r.Set(NameKey("gone"), Missing)

	data, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"0":["x"],"address":{"city":"Lagos"},"gone":null}`, string(data))
	assert.Equal(t, string(data), r.String())

	var nilRecord *Record
	data, err = nilRecord.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
	assert.Equal(t, 0, nilRecord.Len())
	assert.Nil(t, nilRecord.Keys())

	empty, err := NewRecord(0).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}

func TestMergeValidation(t *testing.T) {
	errs := NewRecord(0)
	key := NameKey("name")

	mergeValidation(errs, key, NewValidationError("first"))
	mergeValidation(errs, key, NewValidationError("second"))
	v, _ := errs.Get(key)
	assert.Equal(t, []string{"first", "second"}, v)

	nested := map[string]any{"city": []string{"required"}}
	mergeValidation(errs, key, NewNestedValidationError(nested))
	v, _ = errs.Get(key)
	assert.Equal(t, nested, v)

	mergeValidation(errs, key, NewValidationError("third"))
	v, _ = errs.Get(key)
	assert.Equal(t, []string{"third"}, v)
}
