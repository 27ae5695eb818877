package remote_array

import (
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"bosplit/pod"
	"bosplit/process"
	"bosplit/process_blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	heapBase = process.ProcessMemoryAddress(0x100000)
	heapSize = process.ProcessMemorySize(0x40000)
)

type entry struct {
	Kind   uint32
	Health float32
}

func newHeap(t *testing.T) *process_blob.ProcessImage {
	t.Helper()
	img := process_blob.NewProcessImage()
	require.NoError(t, img.Map(heapBase, heapSize, "rw-p", ""))
	return img
}

func writeArray[T any](t *testing.T, img *process_blob.ProcessImage, base process.ProcessMemoryAddress, count uint32, elements []T) {
	t.Helper()
	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, count)
	require.NoError(t, img.WriteMemory(base.Add(CountOffset), header))

	var data []byte
	for _, e := range elements {
		data = append(data, pod.WriteT(e)...)
	}
	if len(data) > 0 {
		require.NoError(t, img.WriteMemory(base.Add(DataOffset), data))
	}
}

func TestReadAll(t *testing.T) {
	img := newHeap(t)
	base := heapBase + 0x100
	want := []entry{{1, 100}, {2, 250}, {3, 3500}}
	writeArray(t, img, base, 3, want)

	h := New[entry](base)
	assert.Equal(t, process.ProcessMemorySize(8), h.Stride())

	n, err := h.Count(img)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := h.ReadAll(img)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadAllEmpty(t *testing.T) {
	img := newHeap(t)
	writeArray[entry](t, img, heapBase, 0, nil)

	got, err := New[entry](heapBase).ReadAll(img)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadAllCapsCorruptCount(t *testing.T) {
	img := newHeap(t)
	elements := make([]entry, MaxElements)
	for i := range elements {
		elements[i] = entry{Kind: uint32(i)}
	}
	writeArray(t, img, heapBase, 5_000_000, elements)

	got, err := New[entry](heapBase).ReadAll(img)
	require.NoError(t, err)
	assert.Len(t, got, MaxElements)
	assert.Equal(t, uint32(MaxElements-1), got[MaxElements-1].Kind)
}

func TestReadAllIsAllOrNothing(t *testing.T) {
	img := newHeap(t)
	// The array header sits near the end of the mapping so the data runs off it.
	base := heapBase.Add(heapSize - 0x40)
	writeArray[entry](t, img, base, 16, nil)

	got, err := New[entry](base).ReadAll(img)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, process.ErrPartialRead)
	assert.True(t, process.IsReadFailure(err))
}

func TestHandleChecks(t *testing.T) {
	img := newHeap(t)

	_, err := New[entry](0).Count(img)
	assert.ErrorIs(t, err, process.ErrInvalidPointer)

	_, err = New[entry](heapBase + 4).ReadAll(img)
	assert.ErrorIs(t, err, process.ErrStructuralMismatch)

	_, err = New[entry](0x7000).Count(img)
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)
}

func TestIterate(t *testing.T) {
	img := newHeap(t)
	base := heapBase.Add(heapSize - 0x30)
	// Three elements declared, only two fit inside the mapping.
	writeArray(t, img, base, 3, []entry{{7, 1}, {8, 2}})

	h := New[entry](base)
	got := slices.Collect(h.Iterate(img))
	assert.Equal(t, []entry{{7, 1}, {8, 2}}, got)

	// Restartable: a second pass re-reads from scratch.
	writeArray(t, img, base, 1, []entry{{9, 3}})
	assert.Equal(t, []entry{{9, 3}}, slices.Collect(h.Iterate(img)))

	// Early break stops reading.
	writeArray(t, img, base, 2, []entry{{7, 1}, {8, 2}})
	for e := range h.Iterate(img) {
		assert.Equal(t, uint32(7), e.Kind)
		break
	}

	assert.Empty(t, slices.Collect(New[entry](0).Iterate(img)))
}

func TestReadClass(t *testing.T) {
	img := newHeap(t)
	objects := []process.ProcessMemoryAddress{heapBase + 0x1000, heapBase + 0x2000}
	for i, obj := range objects {
		require.NoError(t, img.WriteMemory(obj.Add(0x10), pod.WriteT(entry{Kind: uint32(i + 1), Health: 10})))
	}
	writeArray(t, img, heapBase, 2, objects)

	resolve := func(proc process.ProcessRead, addr process.ProcessMemoryAddress) (entry, error) {
		return pod.ReadT[entry](proc, addr.Add(0x10))
	}

	h := New[process.ProcessMemoryAddress](heapBase)
	got, err := ReadClass(img, h, resolve)
	require.NoError(t, err)
	assert.Equal(t, []entry{{1, 10}, {2, 10}}, got)

	// One unreadable element fails the whole collection.
	writeArray(t, img, heapBase, 3, append(objects, 0xdead0000))
	got, err = ReadClass(img, h, resolve)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)

	boom := errors.New("boom")
	_, err = ReadClass(img, h, func(process.ProcessRead, process.ProcessMemoryAddress) (entry, error) {
		return entry{}, boom
	})
	assert.ErrorIs(t, err, boom)
}
