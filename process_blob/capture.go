package process_blob

import (
	"fmt"

	"bosplit/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// DefaultMaxRegionSize skips huge mappings (textures, audio) that never hold game state
const DefaultMaxRegionSize = 256 * 1024 * 1024

var captureLog = logger.NewLogger(coloransi.Color(coloransi.ColorTeal, coloransi.ColorOrange, "capture"))

// Capture copies every readable region of proc into a new image.
// Regions larger than maxRegionSize or unreadable at copy time are kept in the
// memory map but carry no data, so reads from them fail like unmapped memory.
func Capture(proc process.Process, name string, maxRegionSize uint) (*ProcessImage, error) {
	if err := proc.UpdateMemoryMap(); err != nil {
		return nil, fmt.Errorf("failed to update memory map: %w", err)
	}

	mm, err := proc.GetMemoryMap()
	if err != nil {
		return nil, err
	}

	image := NewProcessImage()
	image.PID = proc.GetPID()
	image.Name = name
	image.MemoryMap = mm

	savedCount := 0
	skippedCount := 0
	for _, region := range mm {
		if !region.IsReadable() || (maxRegionSize > 0 && region.Size > maxRegionSize) {
			skippedCount++
			continue
		}

		data, err := proc.ReadMemory(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil {
			captureLog.Debugln("Failed to read memory region at", fmt.Sprintf("%x", region.Address), err)
			skippedCount++
			continue
		}

		image.Blobs[region.Address] = data
		savedCount++
	}

	captureLog.Infoln("Captured", savedCount, "regions,", skippedCount, "skipped")

	return image, image.UpdateMemoryMap()
}
