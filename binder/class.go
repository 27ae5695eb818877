package binder

import (
	"fmt"
	"reflect"

	"bosplit/pod"
	"bosplit/process"
)

// Field tags name the remote backing field, e.g.
//
//	Defeated bool `field:"<Defeated>k__BackingField"`
const fieldTag = "field"

type boundField struct {
	index  int
	name   string
	remote string
	offset uint32
	size   int
}

// Class reads records of type T laid out as the named class. Offsets are
// resolved once by Bind; a read is one span read plus per-field decoding.
type Class[T any] struct {
	name   string
	fields []boundField
	span   process.ProcessMemorySize
}

// Bind resolves every tagged field of T against class in the layout.
// A missing class or field is ErrBindFailure.
func Bind[T any](layout *Layout, class string) (*Class[T], error) {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("bind %s: %T is not a struct", class, zero)
	}

	c := &Class[T]{name: class}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		remote, ok := sf.Tag.Lookup(fieldTag)
		if !ok || remote == "-" {
			continue
		}

		offset, err := layout.FieldOffset(class, remote)
		if err != nil {
			return nil, err
		}

		size, err := pod.FieldSize(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("bind %s.%s: %w", class, sf.Name, err)
		}

		c.fields = append(c.fields, boundField{
			index:  i,
			name:   sf.Name,
			remote: remote,
			offset: offset,
			size:   size,
		})
		c.span = max(c.span, process.ProcessMemorySize(offset)+process.ProcessMemorySize(size))
	}

	if len(c.fields) == 0 {
		return nil, fmt.Errorf("bind %s: %T has no tagged fields: %w", class, zero, ErrBindFailure)
	}

	return c, nil
}

func (c *Class[T]) Name() string {
	return c.name
}

// Span is the number of bytes read per record, from the object start
func (c *Class[T]) Span() process.ProcessMemorySize {
	return c.span
}

// Offset reports the remote offset of the Go struct field goField
func (c *Class[T]) Offset(goField string) (uint32, bool) {
	for _, f := range c.fields {
		if f.name == goField {
			return f.offset, true
		}
	}
	return 0, false
}

// Read decodes one record at addr
func (c *Class[T]) Read(proc process.ProcessRead, addr process.ProcessMemoryAddress) (T, error) {
	var record T
	if addr.IsNull() {
		return record, fmt.Errorf("read %s at 0x0: %w", c.name, process.ErrInvalidPointer)
	}

	blob, err := proc.ReadBlob(addr, c.span)
	if err != nil {
		return record, fmt.Errorf("read %s at %s: %w", c.name, addr, err)
	}
	data := blob.Data()

	rv := reflect.ValueOf(&record).Elem()
	for _, f := range c.fields {
		if err := pod.SetField(rv.Field(f.index), data[f.offset:]); err != nil {
			return record, fmt.Errorf("read %s.%s: %w", c.name, f.name, err)
		}
	}

	return record, nil
}

// Encode lays v out the way the remote object stores it. Fields not bound
// to the layout stay zero.
func (c *Class[T]) Encode(v T) ([]byte, error) {
	data := make([]byte, c.span)
	rv := reflect.ValueOf(v)
	for _, f := range c.fields {
		if err := pod.PutField(rv.Field(f.index), data[f.offset:]); err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", c.name, f.name, err)
		}
	}
	return data, nil
}
