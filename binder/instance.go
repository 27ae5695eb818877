package binder

import (
	"fmt"
	"path"
	"strings"

	"bosplit/process"
	"bosplit/process/memory_map"
)

// MaxScenePath bounds the scene path string read
const MaxScenePath = 128

// Resolve walks p inside proc and returns the address it ends at
func (p PointerPath) Resolve(proc process.Process) (process.ProcessMemoryAddress, error) {
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return 0, fmt.Errorf("memory map: %w", err)
	}

	base, ok := memory_map.FindModule(p.Module, mm)
	if !ok {
		return 0, fmt.Errorf("module %s not loaded: %w", p.Module, process.ErrAddressNotMapped)
	}

	offsets := make([]process.ProcessMemorySize, 0, len(p.Path)+1)
	offsets = append(offsets, process.ProcessMemorySize(p.Offset))
	for _, off := range p.Path {
		offsets = append(offsets, process.ProcessMemorySize(off))
	}

	return process.ResolvePath(proc, process.ProcessMemoryAddress(base), offsets...)
}

// ResolveInstance returns the address of the singleton object of class.
// The path ends at the static field holding the object pointer.
func (l *Layout) ResolveInstance(proc process.Process, class string) (process.ProcessMemoryAddress, error) {
	p, err := l.Instance(class)
	if err != nil {
		return 0, err
	}

	field, err := p.Resolve(proc)
	if err != nil {
		return 0, fmt.Errorf("instance %s: %w", class, err)
	}

	addr, err := proc.ReadPOINTER(field)
	if err != nil {
		return 0, fmt.Errorf("instance %s: %w", class, err)
	}
	if addr.IsNull() {
		return 0, fmt.Errorf("instance %s not created yet: %w", class, process.ErrInvalidPointer)
	}

	return addr, nil
}

// ScenePath reads the path of the active scene, e.g. "Assets/Scenes/CBF Intro.unity"
func (l *Layout) ScenePath(proc process.Process) (string, error) {
	if l.Scene == nil {
		return "", fmt.Errorf("no scene path in layout: %w", ErrBindFailure)
	}

	field, err := l.Scene.Resolve(proc)
	if err != nil {
		return "", fmt.Errorf("scene: %w", err)
	}

	str, err := proc.ReadPOINTER(field)
	if err != nil {
		return "", fmt.Errorf("scene: %w", err)
	}

	return proc.ReadNTS(str, MaxScenePath)
}

// SceneName reduces a scene path to its basename without the .unity extension
func SceneName(scenePath string) string {
	name := path.Base(strings.ReplaceAll(scenePath, "\\", "/"))
	return strings.TrimSuffix(name, ".unity")
}
