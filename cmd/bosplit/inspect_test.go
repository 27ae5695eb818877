package main

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bosplit/binder"
	"bosplit/game"
	"bosplit/process"
	"bosplit/process_blob"
)

const testLayout = "../../game/testdata/layout.yaml"

func putPointer(t *testing.T, img *process_blob.ProcessImage, at, value process.ProcessMemoryAddress) {
	t.Helper()
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(value))
	require.NoError(t, img.WriteMemory(at, buf))
}

func encode[T any](t *testing.T, c *binder.Class[T], v T) []byte {
	t.Helper()
	data, err := c.Encode(v)
	require.NoError(t, err)
	return data
}

// newGameImage lays out GameManager with a quest manager and a one boss
// list. Every other manager pointer is null.
func newGameImage(t *testing.T) *process_blob.ProcessImage {
	t.Helper()
	layout, err := binder.LoadLayout(testLayout)
	require.NoError(t, err)
	classes, err := game.Bind(layout)
	require.NoError(t, err)

	img := process_blob.NewProcessImage()
	require.NoError(t, img.Map(0x100000, 0x10000, "rw-p", ""))
	require.NoError(t, img.Map(0x400000, 0x3000, "r--p", `Z:\Games\Bo\GameAssembly.dll`))
	require.NoError(t, img.Map(0x500000, 0x3000, "r--p", `Z:\Games\Bo\UnityPlayer.dll`))

	putPointer(t, img, 0x401000, 0x10F000)
	putPointer(t, img, 0x10F000+0xb8, 0x100000)
	require.NoError(t, img.WriteMemory(0x100000, encode(t, classes.GameManager, game.GameManager{
		QuestManager:   0x101000,
		EnemiesManager: 0x105000,
	})))
	require.NoError(t, img.WriteMemory(0x101000, encode(t, classes.QuestManager, game.QuestManager{DefeatedPUA: true})))
	require.NoError(t, img.WriteMemory(0x105000, encode(t, classes.EnemiesManager, game.EnemiesManager{Bosses: 0x106000})))

	count := make([]byte, 4)
	binary.LittleEndian.PutUint32(count, 1)
	require.NoError(t, img.WriteMemory(0x106000+0x18, count))
	putPointer(t, img, 0x106000+0x20, 0x107000)
	require.NoError(t, img.WriteMemory(0x107000, encode(t, classes.BossData, game.BossData{
		Boss:        game.BossKiriKiriBozu,
		Defeated:    true,
		TotalHealth: 300,
	})))

	putPointer(t, img, 0x502000, 0x10E000)
	putPointer(t, img, 0x10E000+0x48, 0x10E800)
	require.NoError(t, img.WriteMemory(0x10E800, append([]byte("Assets/Scenes/CBF Intro.unity"), 0)))
	return img
}

func TestInspectImage(t *testing.T) {
	img := newGameImage(t)
	layout, err := binder.LoadLayout(testLayout)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inspectImage(&out, img, layout, false, false))

	text := out.String()
	assert.Contains(t, text, "Scene: CBF Intro")
	assert.Contains(t, text, game.ClassGameManager)
	assert.Contains(t, text, game.ClassQuestManager)
	assert.Contains(t, text, "DefeatedPUA")
	assert.Contains(t, text, "Bosses: 1 elements")
	assert.Contains(t, text, "Bosses[0]")
	assert.Contains(t, text, "KiriKiriBozu")
	assert.Contains(t, text, "=== "+game.ClassAbilityManager+" @ 0x0:", "null managers are reported, not fatal")
}

func TestInspectImageUnresolvedRoot(t *testing.T) {
	img := newGameImage(t)
	putPointer(t, img, 0x10F000+0xb8, 0)
	layout, err := binder.LoadLayout(testLayout)
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Error(t, inspectImage(&out, img, layout, false, false))
}

func TestInspectCommandFromDump(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, newGameImage(t).Save(dir))

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", "--from", dir, "--layout", testLayout, "--raw"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "KiriKiriBozu")
	assert.Contains(t, out.String(), "000000107000")
}

func TestInspectCommandAddr(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, newGameImage(t).Save(dir))

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", "--from", dir, "--addr", "0x10E800", "--size", "16"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "00000010e800")
	assert.Contains(t, out.String(), "Assets/S")
}

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress("0x7F12A0001000")
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x7f12a0001000), addr)

	_, err = parseAddress("zz")
	assert.Error(t, err)
}
