// Package binder turns a layout file (class field offsets and static instance
// paths resolved elsewhere) into typed readers for fixed-layout records.
package binder

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrBindFailure means a required class, field or instance path is missing
// from the layout. It is the only error that aborts a session.
var ErrBindFailure = errors.New("bind failure")

// Layout describes where things live in one build of the game
type Layout struct {
	Classes   map[string]ClassLayout `yaml:"classes"`
	Instances map[string]PointerPath `yaml:"instances"`
	Scene     *PointerPath           `yaml:"scene"`
}

// ClassLayout maps backing-field names to their offset in the object
type ClassLayout struct {
	Fields map[string]uint32 `yaml:"fields"`
}

// PointerPath locates a value as module base + Offset, then one pointer hop
// per Path entry. The last entry is added to the final pointer.
type PointerPath struct {
	Module string   `yaml:"module"`
	Offset uint64   `yaml:"offset"`
	Path   []uint64 `yaml:"path"`
}

func LoadLayout(filename string) (*Layout, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()

	layout, err := ParseLayout(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return layout, nil
}

func ParseLayout(r io.Reader) (*Layout, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var layout Layout
	if err := dec.Decode(&layout); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	if len(layout.Classes) == 0 {
		return nil, fmt.Errorf("layout has no classes: %w", ErrBindFailure)
	}
	for name, path := range layout.Instances {
		if path.Module == "" {
			return nil, fmt.Errorf("instance %s has no module: %w", name, ErrBindFailure)
		}
	}
	if layout.Scene != nil && layout.Scene.Module == "" {
		return nil, fmt.Errorf("scene path has no module: %w", ErrBindFailure)
	}

	return &layout, nil
}

// FieldOffset returns the offset of field inside class
func (l *Layout) FieldOffset(class, field string) (uint32, error) {
	c, ok := l.Classes[class]
	if !ok {
		return 0, fmt.Errorf("class %s not in layout: %w", class, ErrBindFailure)
	}

	offset, ok := c.Fields[field]
	if !ok {
		return 0, fmt.Errorf("field %s.%s not in layout: %w", class, field, ErrBindFailure)
	}

	return offset, nil
}

// Instance returns the static path to the singleton of class
func (l *Layout) Instance(class string) (PointerPath, error) {
	p, ok := l.Instances[class]
	if !ok {
		return PointerPath{}, fmt.Errorf("no instance path for %s: %w", class, ErrBindFailure)
	}
	return p, nil
}
