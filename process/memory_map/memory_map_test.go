package memory_map

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMap() []MemoryMapItem {
	mm := []MemoryMapItem{
		{Address: 0x3000, Size: 0x1000, Perms: "---p"},
		{Address: 0x1000, Size: 0x1000, Perms: "r--p", Path: "/games/Bo/GameAssembly.dll"},
		{Address: 0x2000, Size: 0x1000, Perms: "rw-p", Path: "/games/Bo/GameAssembly.dll"},
	}
	Sort(mm)
	return mm
}

func TestFindRegion(t *testing.T) {
	mm := testMap()

	item := FindRegion(0x2800, mm)
	require.NotNil(t, item)
	assert.Equal(t, uint64(0x2000), item.Address)

	assert.Nil(t, FindRegion(0x800, mm))
	assert.Nil(t, FindRegion(0x4000, mm))
}

func TestContainsRange(t *testing.T) {
	mm := testMap()

	assert.True(t, ContainsRange(0x1000, 0x1000, mm))
	assert.False(t, ContainsRange(0x1800, 0x1000, mm), "range spanning two regions")
	assert.False(t, ContainsRange(0x3000, 4, mm), "unreadable region")
}

func TestFindModule(t *testing.T) {
	mm := testMap()

	base, ok := FindModule("gameassembly.dll", mm)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1000), base)

	_, ok = FindModule("UnityPlayer.dll", mm)
	assert.False(t, ok)
}
