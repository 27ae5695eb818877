package tracker

import (
	"reflect"
)

// Diff returns one Transition per exported field that differs between prev
// and cur, in field order. Non-struct values produce a single transition
// with an empty field name.
func Diff[T comparable](entity, key string, prev, cur T) []Transition {
	if prev == cur {
		return nil
	}

	pv := reflect.ValueOf(prev)
	cv := reflect.ValueOf(cur)
	if pv.Kind() != reflect.Struct {
		return []Transition{{Entity: entity, Key: key, Previous: prev, Current: cur}}
	}

	var transitions []Transition
	rt := pv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if !rt.Field(i).IsExported() {
			continue
		}

		a := pv.Field(i).Interface()
		b := cv.Field(i).Interface()
		if a == b {
			continue
		}

		transitions = append(transitions, Transition{
			Entity:   entity,
			Key:      key,
			Field:    rt.Field(i).Name,
			Previous: a,
			Current:  b,
		})
	}

	return transitions
}
