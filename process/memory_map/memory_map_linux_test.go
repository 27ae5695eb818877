//go:build linux

package memory_map

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaps(t *testing.T) {
	maps := `7f0000002000-7f0000003000 rw-p 00000000 00:00 0
7f0000000000-7f0000001000 r-xp 00000000 08:01 1234 /home/runner/Games/Bo Path/GameAssembly.dll
garbage line
`
	mm, err := ParseMaps(strings.NewReader(maps))
	require.NoError(t, err)
	require.Len(t, mm, 2)

	assert.Equal(t, uint64(0x7f0000000000), mm[0].Address)
	assert.Equal(t, uint(0x1000), mm[0].Size)
	assert.Equal(t, "/home/runner/Games/Bo Path/GameAssembly.dll", mm[0].Path)
	assert.Equal(t, "", mm[1].Path)
}
