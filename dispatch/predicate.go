package dispatch

import (
	"reflect"
)

// Predicate decides whether a field going from prev to cur is interesting.
// Predicates are pure.
type Predicate func(prev, cur any) bool

// BecameTrue matches a bool field going from false to true
func BecameTrue() Predicate {
	return func(prev, cur any) bool {
		p, ok1 := prev.(bool)
		c, ok2 := cur.(bool)
		return ok1 && ok2 && !p && c
	}
}

// Crossed matches an integer field going from exactly from to exactly to
func Crossed(from, to int64) Predicate {
	return func(prev, cur any) bool {
		p, ok1 := asInt(prev)
		c, ok2 := asInt(cur)
		return ok1 && ok2 && p == from && c == to
	}
}

func asInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}
