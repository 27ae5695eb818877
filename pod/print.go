package pod

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// PrintOptions controls PrintStruct output
type PrintOptions struct {
	// Title replaces the type name in the header
	Title string
	// Address is printed in the header when non-zero
	Address uint64
	// Offset reports the remote offset of a field. Fields without an offset
	// are printed with "-".
	Offset func(field reflect.StructField) (uint32, bool)
	// IsValidPointer marks pointer-sized values that land in mapped memory
	IsValidPointer func(addr uint64) bool
	// Color enables ANSI colors
	Color bool
}

// PrintStruct renders the exported fields of a struct (or *struct) as a
// Field/Offset/Value/AsPtr table.
func PrintStruct(w io.Writer, v any, opts PrintOptions) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			_, err := fmt.Fprintln(w, "<nil pointer>")
			return err
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("PrintStruct: expected struct or *struct, got %s", rv.Kind())
	}

	rt := rv.Type()
	title := opts.Title
	if title == "" {
		title = rt.Name()
	}

	header := fmt.Sprintf("=== %s ===", title)
	if opts.Address != 0 {
		header = fmt.Sprintf("=== %s @ 0x%X ===", title, opts.Address)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	valueColumn := ColumnSpec{Header: "Value", MinWidth: 6}
	ptrColumn := ColumnSpec{Header: "AsPtr", MinWidth: 6}
	if opts.Color {
		valueColumn.FormatFunc = func(s string) string {
			if s == "0" || s == "false" {
				return coloransi.Foreground(coloransi.CreateRGB(64, 64, 64), s)
			}
			return coloransi.Foreground(coloransi.ColorLimeGreen, s)
		}
		ptrColumn.FormatFunc = func(s string) string {
			switch {
			case strings.Contains(s, "✓"):
				return coloransi.Foreground(coloransi.ColorLimeGreen, s)
			case strings.Contains(s, "×"):
				return coloransi.Foreground(coloransi.BrightRed, s)
			}
			return s
		}
	}

	table := NewTable(
		ColumnSpec{Header: "Field", MinWidth: 8},
		ColumnSpec{Header: "Offset", MinWidth: 6},
		valueColumn,
		ptrColumn,
	)

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		offset := ""
		if opts.Offset != nil {
			if off, ok := opts.Offset(sf); ok {
				offset = fmt.Sprintf("0x%X", off)
			}
		}

		fv := rv.Field(i)
		table.AddRow(sf.Name, offset, formatValue(fv), asPtrString(opts.IsValidPointer, fv))
	}

	return table.Render(w)
}

func formatValue(fv reflect.Value) string {
	var raw string
	switch fv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := fv.Uint()
		if u > 9 {
			raw = fmt.Sprintf("%d (0x%X)", u, u)
		} else {
			raw = fmt.Sprintf("%d", u)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		raw = fmt.Sprintf("%d", fv.Int())
	case reflect.Float32:
		raw = fmt.Sprintf("%g", float32(fv.Float()))
	case reflect.Float64:
		raw = fmt.Sprintf("%g", fv.Float())
	case reflect.Bool:
		raw = fmt.Sprintf("%v", fv.Bool())
	default:
		raw = fmt.Sprintf("%v", fv.Interface())
	}

	// Named enums carry their own String(); show both forms
	if fv.Type().PkgPath() != "" && fv.CanInterface() {
		if s, ok := fv.Interface().(fmt.Stringer); ok {
			if name := s.String(); name != "" && name != raw && !strings.HasPrefix(name, "0x") {
				return raw + " :: " + name
			}
		}
	}
	return raw
}

func asPtrString(isValidPtr func(uint64) bool, fv reflect.Value) string {
	if isValidPtr == nil || fv.Type().Size() != 8 {
		return ""
	}

	switch fv.Kind() {
	case reflect.Uint64, reflect.Uintptr:
		addr := fv.Uint()
		if addr == 0 {
			return ""
		}
		if isValidPtr(addr) {
			return fmt.Sprintf("0x%X ✓", addr)
		}
		return fmt.Sprintf("0x%X ×", addr)
	}
	return ""
}
