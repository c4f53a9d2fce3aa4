package marshal

import (
	"container/list"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

func TestKeyOf(t *testing.T) {
	k, err := KeyOf("a.b")
	require.NoError(t, err)
	assert.True(t, k.IsName())
	assert.Equal(t, []string{"a", "b"}, k.Segments())

	k, err = KeyOf(int32(2))
	require.NoError(t, err)
	assert.Equal(t, IndexKey(2), k)
	assert.Equal(t, "2", k.String())

	k, err = KeyOf(uint8(3))
	require.NoError(t, err)
	assert.Equal(t, 3, k.Index())

	_, err = KeyOf(3.14)
	assert.ErrorIs(t, err, merr.ErrKeyUnsupported)
	_, err = KeyOf(uint64(1 << 63))
	assert.ErrorIs(t, err, merr.ErrKeyUnsupported)
	_, err = KeyOf(Key{})
	assert.ErrorIs(t, err, merr.ErrKeyUnsupported)
	assert.Equal(t, "<invalid>", Key{}.String())
}

func TestLookupIndexKey(t *testing.T) {
	v, ok, err := Lookup(IndexKey(1), []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	// 整数 key 不回退到属性访问。
	_, ok, err = Lookup(IndexKey(0), person{Name: "Ada"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupItemBeforeAttr(t *testing.T) {
	v, ok, err := Lookup(NameKey("kind"), dual{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "item", v)

	v, err = Resolve(NameKey("extra"), dual{}, Missing)
	require.NoError(t, err)
	assert.Equal(t, "attr-only", v)
}

func TestLookupNestedPath(t *testing.T) {
	src := map[string]any{"address": map[string]any{"city": "Lagos"}}
	v, err := Resolve(NameKey("address.city"), src, Missing)
	require.NoError(t, err)
	assert.Equal(t, "Lagos", v)

	mixed := map[string]any{"user": &person{Name: "Ada", Address: &address{City: "London"}}}
	v, err = Resolve(NameKey("user.address.city"), mixed, Missing)
	require.NoError(t, err)
	assert.Equal(t, "London", v)
}

func TestLookupShortCircuit(t *testing.T) {
	src := map[string]any{"address": map[string]any{"city": "Lagos"}}
	for _, key := range []string{"address.zip.code", "nope.city", "address.city.name"} {
		v, err := Resolve(NameKey(key), src, Missing)
		require.NoError(t, err)
		assert.True(t, IsMissing(v), key)
	}
}

func TestResolveDoesNotMutateSource(t *testing.T) {
	l := list.New()
	l.PushBack("a")
	l.PushBack("b")

	v, err := Resolve(NameKey("init"), l, Missing)
	require.NoError(t, err)
	assert.True(t, IsMissing(v))
	assert.Equal(t, 2, l.Len())
}

func TestResolveDefaults(t *testing.T) {
	v, err := Resolve(NameKey("a"), nil, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	// nil 是合法值，不是缺失。
	v, err = Resolve(NameKey("a"), map[string]any{"a": nil}, Missing)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.False(t, IsMissing(v))

	_, err = Resolve(Key{}, map[string]any{}, Missing)
	assert.ErrorIs(t, err, merr.ErrKeyUnsupported)

	v, err = DefaultResolver.Resolve(NameKey("name"), person{Name: "Ada"}, Missing)
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)
}
