package marshal

import (
	"container/list"
	"testing"

	"github.com/stretchr/testify/assert"
)

type address struct {
	City string
}

type person struct {
	Name    string `json:"name"`
	Age     int
	Address *address
	Nick    string `json:"-" marshal:"nickname"`
	secret  string
}

func (p person) Greeting() string { return "hi " + p.Name }

func (p *person) Initial() string { return p.Name[:1] }

func (p person) Echo(x int) int { return x }

type base struct {
	ID int
}

type derived struct {
	*base
	Title string
}

// counter 的 Inc 方法会修改自身。
type counter struct {
	N int
}

func (c *counter) Inc() int {
	c.N++
	return c.N
}

type panicky struct{}

func (panicky) Boom() string { panic("boom") }

// dual 同时支持两种访问方式，用来确认元素访问优先。
type dual struct{}

func (dual) TryGetItem(key any) (any, bool) {
	if key == "kind" {
		return "item", true
	}
	return nil, false
}

func (dual) TryGetAttr(name string) (any, bool) {
	switch name {
	case "kind":
		return "attr", true
	case "extra":
		return "attr-only", true
	}
	return nil, false
}

func TestGetItem(t *testing.T) {
	cases := []struct {
		name  string
		obj   any
		key   any
		value any
		ok    bool
	}{
		{"map string", map[string]any{"a": 1}, "a", 1, true},
		{"map absent", map[string]any{"a": 1}, "b", nil, false},
		{"map string with int key", map[string]any{"a": 1}, 0, nil, false},
		{"typed map", map[string]string{"a": "x"}, "a", "x", true},
		{"int map", map[int]string{1: "one"}, 1, "one", true},
		{"int64 map", map[int64]string{2: "two"}, 2, "two", true},
		{"uint map negative", map[uint]string{1: "one"}, -1, nil, false},
		{"any map", map[any]any{"a": 1, 2: "b"}, 2, "b", true},
		{"pointer to map", &map[string]int{"a": 3}, "a", 3, true},
		{"slice", []int{1, 2, 3}, 1, 2, true},
		{"slice negative", []int{1, 2, 3}, -1, 3, true},
		{"slice out of range", []int{1, 2, 3}, 3, nil, false},
		{"slice with string key", []int{1, 2, 3}, "0", nil, false},
		{"any slice", []any{"x"}, 0, "x", true},
		{"array", [2]string{"a", "b"}, 1, "b", true},
		{"struct", person{Name: "Ada"}, "name", nil, false},
		{"nil", nil, "a", nil, false},
		{"nil map pointer", (*map[string]int)(nil), "a", nil, false},
		{"source", dual{}, "kind", "item", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, ok := GetItem(c.obj, c.key)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.value, v)
		})
	}
}

func TestGetAttr(t *testing.T) {
	ada := person{Name: "Ada", Age: 30, Nick: "countess", secret: "s"}

	cases := []struct {
		name  string
		obj   any
		attr  string
		value any
		ok    bool
	}{
		{"json tag", ada, "name", "Ada", true},
		{"field name", ada, "Age", 30, true},
		{"lower field name", ada, "age", 30, true},
		{"marshal tag", ada, "nickname", "countess", true},
		{"pointer field", &ada, "age", 30, true},
		{"pointer tag", &ada, "name", "Ada", true},
		{"unexported", ada, "secret", nil, false},
		{"value method is not called", ada, "greeting", nil, false},
		{"value method on pointer is not called", &ada, "Greeting", nil, false},
		{"pointer method on value is not called", ada, "initial", nil, false},
		{"method with args", ada, "echo", nil, false},
		{"absent", ada, "height", nil, false},
		{"nil pointer", (*person)(nil), "name", nil, false},
		{"promoted through nil", derived{Title: "t"}, "ID", nil, false},
		{"promoted", derived{base: &base{ID: 7}}, "ID", 7, true},
		{"panic is a miss", panicky{}, "boom", nil, false},
		{"source", dual{}, "extra", "attr-only", true},
		{"map has no attrs", map[string]any{"a": 1}, "a", nil, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, ok := GetAttr(c.obj, c.attr)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.value, v)
		})
	}
}

func TestGetAttrDoesNotMutate(t *testing.T) {
	p := person{Name: "Ada", Address: &address{City: "London"}}
	v, ok := GetAttr(&p, "address")
	assert.True(t, ok)
	assert.Same(t, p.Address, v)
	assert.Equal(t, "Ada", p.Name)
}

func TestGetAttrNeverCallsMethods(t *testing.T) {
	c := &counter{N: 5}
	for _, name := range []string{"inc", "Inc"} {
		v, ok := GetAttr(c, name)
		assert.False(t, ok, name)
		assert.Nil(t, v, name)
	}
	v, ok := GetAttr(c, "n")
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, 5, c.N)

	l := list.New()
	l.PushBack(1)
	l.PushBack(2)
	for _, name := range []string{"init", "Init", "front", "len"} {
		_, ok := GetAttr(l, name)
		assert.False(t, ok, name)
	}
	assert.Equal(t, 2, l.Len())
}
