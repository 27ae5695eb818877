package process_blob

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bosplit/process"
	"bosplit/process/memory_map"
)

const (
	metadataFile  = "metadata.json"
	memoryMapFile = "process_memory_map.json"
)

// ProcessImage implements process.Process over memory held locally: either a
// dump loaded from disk or regions mapped by hand in tests.
type ProcessImage struct {
	Reader
	PID       process.ProcessID
	Name      string
	MemoryMap []memory_map.MemoryMapItem
	Blobs     map[uint64][]byte // region address -> data
	closed    bool
}

var _ process.Process = (*ProcessImage)(nil)

// NewProcessImage creates an empty image
func NewProcessImage() *ProcessImage {
	p := &ProcessImage{
		Blobs: make(map[uint64][]byte),
	}
	p.Reader = NewReader(p.ReadMemory)
	return p
}

func (p *ProcessImage) Open(pid process.ProcessID) error {
	return fmt.Errorf("Open not supported for ProcessImage, use Load")
}

func (p *ProcessImage) Close() error {
	p.closed = true
	return nil
}

func (p *ProcessImage) GetPID() process.ProcessID {
	return p.PID
}

func (p *ProcessImage) UpdateMemoryMap() error {
	memory_map.Sort(p.MemoryMap)
	return nil
}

func (p *ProcessImage) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	item := memory_map.FindRegion(uint64(addr), p.MemoryMap)
	return item != nil && item.IsReadable()
}

func (p *ProcessImage) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	result := make([]memory_map.MemoryMapItem, len(p.MemoryMap))
	copy(result, p.MemoryMap)
	return result, nil
}

func (p *ProcessImage) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if p.closed {
		return nil, process.ErrProcessNotOpen
	}

	region := memory_map.FindRegion(uint64(addr), p.MemoryMap)
	if region == nil || !region.IsReadable() {
		return nil, fmt.Errorf("read 0x%x: %w", uint64(addr), process.ErrAddressNotMapped)
	}

	data, ok := p.Blobs[region.Address]
	if !ok {
		return nil, fmt.Errorf("no data for region 0x%x: %w", region.Address, process.ErrAddressNotMapped)
	}

	offset := uint64(addr) - region.Address
	if offset+uint64(size) > uint64(len(data)) {
		return nil, fmt.Errorf("read 0x%x+%d exceeds region 0x%x: %w", uint64(addr), size, region.Address, process.ErrPartialRead)
	}

	result := make([]byte, size)
	copy(result, data[offset:offset+uint64(size)])
	return result, nil
}

// WriteMemory copies data into an already mapped region
func (p *ProcessImage) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	region := memory_map.FindRegion(uint64(addr), p.MemoryMap)
	if region == nil {
		return fmt.Errorf("write 0x%x: %w", uint64(addr), process.ErrAddressNotMapped)
	}

	blob, ok := p.Blobs[region.Address]
	if !ok {
		return fmt.Errorf("no data for region 0x%x: %w", region.Address, process.ErrAddressNotMapped)
	}

	offset := uint64(addr) - region.Address
	if offset+uint64(len(data)) > uint64(len(blob)) {
		return fmt.Errorf("write 0x%x+%d exceeds region 0x%x", uint64(addr), len(data), region.Address)
	}

	copy(blob[offset:], data)
	return nil
}

// Map adds a zero-filled readable region
func (p *ProcessImage) Map(addr process.ProcessMemoryAddress, size process.ProcessMemorySize, perms, path string) error {
	if size == 0 {
		return errors.New("Map: size must be positive")
	}
	for _, item := range p.MemoryMap {
		if uint64(addr) < item.End() && item.Address < uint64(addr)+uint64(size) {
			return fmt.Errorf("Map: 0x%x+%d overlaps region 0x%x", uint64(addr), size, item.Address)
		}
	}

	p.MemoryMap = append(p.MemoryMap, memory_map.MemoryMapItem{
		Address: uint64(addr),
		Size:    uint(size),
		Perms:   perms,
		Path:    path,
	})
	p.Blobs[uint64(addr)] = make([]byte, size)
	return p.UpdateMemoryMap()
}

// Unmap removes the region starting at addr
func (p *ProcessImage) Unmap(addr process.ProcessMemoryAddress) {
	kept := p.MemoryMap[:0]
	for _, item := range p.MemoryMap {
		if item.Address != uint64(addr) {
			kept = append(kept, item)
		}
	}
	p.MemoryMap = kept
	delete(p.Blobs, uint64(addr))
}

type imageMetadata struct {
	PID  process.ProcessID `json:"pid"`
	Name string            `json:"name"`
}

// Save writes metadata, the memory map and one file per captured region
func (p *ProcessImage) Save(dirname string) error {
	if err := os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	metadataJSON, err := json.MarshalIndent(imageMetadata{PID: p.PID, Name: p.Name}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, metadataFile), metadataJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	memoryMapJSON, err := json.MarshalIndent(p.MemoryMap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, memoryMapFile), memoryMapJSON, 0644); err != nil {
		return fmt.Errorf("failed to write memory map file: %w", err)
	}

	for _, region := range p.MemoryMap {
		data, ok := p.Blobs[region.Address]
		if !ok {
			continue
		}
		if err := os.WriteFile(filepath.Join(dirname, blobFileName(region)), data, 0644); err != nil {
			return fmt.Errorf("failed to write region 0x%x: %w", region.Address, err)
		}
	}

	return nil
}

// Load reads an image written by Save
func (p *ProcessImage) Load(dirname string) error {
	metadataBytes, err := os.ReadFile(filepath.Join(dirname, metadataFile))
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata imageMetadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	p.PID = metadata.PID
	p.Name = metadata.Name

	mmBytes, err := os.ReadFile(filepath.Join(dirname, memoryMapFile))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}
	if err := json.Unmarshal(mmBytes, &p.MemoryMap); err != nil {
		return fmt.Errorf("failed to unmarshal memory map: %w", err)
	}
	memory_map.Sort(p.MemoryMap)

	for _, region := range p.MemoryMap {
		filename := filepath.Join(dirname, blobFileName(region))
		data, err := os.ReadFile(filename)
		if errors.Is(err, os.ErrNotExist) {
			continue // region was skipped at capture time
		}
		if err != nil {
			return fmt.Errorf("failed to read blob %s: %w", filename, err)
		}
		p.Blobs[region.Address] = data
	}

	p.closed = false
	return nil
}

func blobFileName(region memory_map.MemoryMapItem) string {
	return fmt.Sprintf("blob_0x%x_%d.bin", region.Address, region.Size)
}
