package hexdump

import (
	"encoding/binary"
	"strings"
	"testing"

	"bosplit/process/memory_map"

	"github.com/stretchr/testify/assert"
)

func sequence(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestDumpShortLinePadsColumns(t *testing.T) {
	out := NewHexDump().SetStartOffset(0x1000).Dump(sequence(20))

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "000000001000  00 01 02 03 04 05 06 07 | 08 09 0a 0b 0c 0d 0e 0f | ................", lines[0])
	assert.Equal(t, "000000001010  10 11 12 13"+strings.Repeat(" ", 12)+" | "+strings.Repeat(" ", 23)+" | ....", lines[1])
	assert.Equal(t, len(lines[0])-12, len(lines[1]), "hex column keeps its width")
}

func TestDumpASCII(t *testing.T) {
	out := NewHexDump().Dump([]byte("CBF Intro\x00\x01"))
	assert.True(t, strings.HasSuffix(out, " | CBF Intro..\n"))
}

func TestDumpPointers(t *testing.T) {
	mm := []memory_map.MemoryMapItem{{Address: 0x100000, Size: 0x1000, Perms: "rw-p"}}
	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data[0:], 0x100010)
	binary.LittleEndian.PutUint64(data[8:], 0x900000)

	out := NewHexDump().EnablePointerChecking(mm).Dump(data)
	assert.True(t, strings.HasSuffix(out, " | 0x100010\n"), out)
	assert.NotContains(t, out, "0x900000")
}

func TestDumpMaxLines(t *testing.T) {
	out := NewHexDump().SetMaxLines(1).Dump(sequence(40))
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, "... 24 more bytes")
}

func TestDumpColor(t *testing.T) {
	plain := NewHexDump().Dump(sequence(4))
	colored := NewHexDump().SetColor(true).Dump(sequence(4))
	assert.NotEqual(t, plain, colored)
	assert.Contains(t, colored, "\x1b[")
}
