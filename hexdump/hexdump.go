// Package hexdump renders raw record bytes next to their remote addresses.
package hexdump

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"bosplit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

const bytesPerLine = 16

// HexDump renders 16 bytes per line: address, two groups of eight hex
// bytes, ASCII, and the pointers in the line that land in mapped memory.
type HexDump struct {
	start     uint64
	color     bool
	maxLines  int
	memoryMap []memory_map.MemoryMapItem
}

func NewHexDump() *HexDump {
	return &HexDump{}
}

// SetStartOffset sets the address printed for the first byte
func (h *HexDump) SetStartOffset(value uint64) *HexDump {
	h.start = value
	return h
}

func (h *HexDump) SetColor(value bool) *HexDump {
	h.color = value
	return h
}

// SetMaxLines truncates the dump; 0 means no limit
func (h *HexDump) SetMaxLines(value int) *HexDump {
	h.maxLines = value
	return h
}

// EnablePointerChecking lists 8-byte aligned values that point into memoryMap
func (h *HexDump) EnablePointerChecking(memoryMap []memory_map.MemoryMapItem) *HexDump {
	h.memoryMap = memoryMap
	return h
}

func (h *HexDump) Dump(data []byte) string {
	var sb strings.Builder
	h.DumpToWriter(&sb, data)
	return sb.String()
}

func (h *HexDump) DumpToWriter(w io.Writer, data []byte) {
	for line, offset := 0, 0; offset < len(data); line, offset = line+1, offset+bytesPerLine {
		if h.maxLines > 0 && line >= h.maxLines {
			fmt.Fprintf(w, "... %d more bytes\n", len(data)-offset)
			return
		}
		end := min(offset+bytesPerLine, len(data))
		h.line(w, data[offset:end], h.start+uint64(offset))
	}
}

func (h *HexDump) line(w io.Writer, data []byte, addr uint64) {
	fmt.Fprint(w, h.paint(coloransi.Cyan, fmt.Sprintf("%012x", addr)), "  ")

	for i := 0; i < bytesPerLine; i++ {
		switch {
		case i == bytesPerLine/2:
			fmt.Fprint(w, " | ")
		case i > 0:
			fmt.Fprint(w, " ")
		}
		if i >= len(data) {
			fmt.Fprint(w, "  ")
			continue
		}
		fg := coloransi.Green
		if data[i] == 0 {
			fg = coloransi.BrightBlack
		}
		fmt.Fprint(w, h.paint(fg, fmt.Sprintf("%02x", data[i])))
	}

	fmt.Fprint(w, " | ")
	for _, b := range data {
		if b >= 0x20 && b < 0x7f {
			fmt.Fprint(w, h.paint(coloransi.White, string(rune(b))))
		} else {
			fmt.Fprint(w, h.paint(coloransi.BrightBlack, "."))
		}
	}

	if h.memoryMap != nil {
		var pointers []string
		for i := 0; i+8 <= len(data); i += 8 {
			ptr := binary.LittleEndian.Uint64(data[i:])
			if memory_map.FindRegion(ptr, h.memoryMap) != nil {
				pointers = append(pointers, h.paint(coloransi.Yellow, fmt.Sprintf("0x%x", ptr)))
			}
		}
		if len(pointers) > 0 {
			fmt.Fprint(w, strings.Repeat(" ", bytesPerLine-len(data)), " | ", strings.Join(pointers, " "))
		}
	}

	fmt.Fprintln(w)
}

func (h *HexDump) paint(fg coloransi.ColorCode, s string) string {
	if !h.color {
		return s
	}
	return coloransi.Foreground(fg, s)
}
