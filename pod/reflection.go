package pod

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// FieldSize returns how many remote bytes a field of type t occupies.
// Only fixed-size plain kinds are supported.
func FieldSize(t reflect.Type) (int, error) {
	switch t.Kind() {
	case reflect.Bool, reflect.Uint8, reflect.Int8:
		return 1, nil
	case reflect.Uint16, reflect.Int16:
		return 2, nil
	case reflect.Uint32, reflect.Int32, reflect.Float32:
		return 4, nil
	case reflect.Uint64, reflect.Int64, reflect.Float64, reflect.Uintptr:
		return 8, nil
	case reflect.Array:
		elem, err := FieldSize(t.Elem())
		if err != nil {
			return 0, err
		}
		return elem * t.Len(), nil
	}
	return 0, fmt.Errorf("unsupported field kind %s (%s)", t.Kind(), t)
}

// SetField decodes little-endian data into field. Named types (enums,
// addresses) are set through their underlying kind.
func SetField(field reflect.Value, data []byte) error {
	size, err := FieldSize(field.Type())
	if err != nil {
		return err
	}
	if len(data) < size {
		return fmt.Errorf("field %s: have %d bytes, need %d: %w", field.Type(), len(data), size, ErrShortBuffer)
	}
	if !field.CanSet() {
		return fmt.Errorf("field %s is not settable", field.Type())
	}

	switch field.Kind() {
	case reflect.Bool:
		field.SetBool(data[0] != 0)
	case reflect.Uint8:
		field.SetUint(uint64(data[0]))
	case reflect.Uint16:
		field.SetUint(uint64(binary.LittleEndian.Uint16(data)))
	case reflect.Uint32:
		field.SetUint(uint64(binary.LittleEndian.Uint32(data)))
	case reflect.Uint64, reflect.Uintptr:
		field.SetUint(binary.LittleEndian.Uint64(data))
	case reflect.Int8:
		field.SetInt(int64(int8(data[0])))
	case reflect.Int16:
		field.SetInt(int64(int16(binary.LittleEndian.Uint16(data))))
	case reflect.Int32:
		field.SetInt(int64(int32(binary.LittleEndian.Uint32(data))))
	case reflect.Int64:
		field.SetInt(int64(binary.LittleEndian.Uint64(data)))
	case reflect.Float32:
		field.SetFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(data))))
	case reflect.Float64:
		field.SetFloat(math.Float64frombits(binary.LittleEndian.Uint64(data)))
	case reflect.Array:
		elemSize, _ := FieldSize(field.Type().Elem())
		for i := 0; i < field.Len(); i++ {
			if err := SetField(field.Index(i), data[i*elemSize:]); err != nil {
				return err
			}
		}
	}

	return nil
}

// PutField is the inverse of SetField
func PutField(field reflect.Value, data []byte) error {
	size, err := FieldSize(field.Type())
	if err != nil {
		return err
	}
	if len(data) < size {
		return fmt.Errorf("field %s: have %d bytes, need %d: %w", field.Type(), len(data), size, ErrShortBuffer)
	}

	switch field.Kind() {
	case reflect.Bool:
		data[0] = 0
		if field.Bool() {
			data[0] = 1
		}
	case reflect.Uint8:
		data[0] = uint8(field.Uint())
	case reflect.Int8:
		data[0] = uint8(field.Int())
	case reflect.Uint16:
		binary.LittleEndian.PutUint16(data, uint16(field.Uint()))
	case reflect.Int16:
		binary.LittleEndian.PutUint16(data, uint16(field.Int()))
	case reflect.Uint32:
		binary.LittleEndian.PutUint32(data, uint32(field.Uint()))
	case reflect.Int32:
		binary.LittleEndian.PutUint32(data, uint32(field.Int()))
	case reflect.Uint64, reflect.Uintptr:
		binary.LittleEndian.PutUint64(data, field.Uint())
	case reflect.Int64:
		binary.LittleEndian.PutUint64(data, uint64(field.Int()))
	case reflect.Float32:
		binary.LittleEndian.PutUint32(data, math.Float32bits(float32(field.Float())))
	case reflect.Float64:
		binary.LittleEndian.PutUint64(data, math.Float64bits(field.Float()))
	case reflect.Array:
		elemSize, _ := FieldSize(field.Type().Elem())
		for i := 0; i < field.Len(); i++ {
			if err := PutField(field.Index(i), data[i*elemSize:]); err != nil {
				return err
			}
		}
	}

	return nil
}
