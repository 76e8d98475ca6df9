package cache

import (
	"strconv"
	"strings"
)

// Key identifies a cached value. Keys are built from ordered parts; two keys
// are equal only when they were built from the same parts in the same order.
type Key string

// NewKey builds a Key from parts. Each part is length-prefixed so that no
// choice of part contents can make two different part lists collide.
func NewKey(parts ...string) Key {
	return Key("").With(parts...)
}

// With returns a new key extending k with parts.
func (k Key) With(parts ...string) Key {
	var b strings.Builder
	b.WriteString(string(k))
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return Key(b.String())
}

// WithInt extends k with integer parts.
func (k Key) WithInt(ints ...int) Key {
	parts := make([]string, len(ints))
	for i, v := range ints {
		parts[i] = strconv.Itoa(v)
	}
	return k.With(parts...)
}
