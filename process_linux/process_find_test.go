//go:build linux

package process_linux

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"bosplit/process"
	"bosplit/process_blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeProc(t *testing.T, root string, pid int, comm, state string, cmdline ...string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comm"), []byte(comm+"\n"), 0644))

	var raw []byte
	for _, arg := range cmdline {
		raw = append(raw, arg...)
		raw = append(raw, 0)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), raw, 0644))
	status := "Name:\t" + comm + "\nState:\t" + state + " (whatever)\nPPid:\t1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0644))
}

func fakeProcRoot(t *testing.T) string {
	root := t.TempDir()
	writeFakeProc(t, root, 900002, "Bo.exe", "S", `C:\Games\Bo\Bo.exe`)
	writeFakeProc(t, root, 900001, "wine64-preload", "R", `Z:\home\me\Bo\BO.EXE`, "-screen-fullscreen")
	writeFakeProc(t, root, 900003, "Bo.exe", "Z")
	writeFakeProc(t, root, 900004, "bash", "S", "/bin/bash")
	return root
}

func TestFindProcessByName(t *testing.T) {
	finder := &LinuxProcessFinder{Root: fakeProcRoot(t)}

	found, err := finder.FindProcessByName("Bo.exe")
	require.NoError(t, err)
	require.Len(t, found, 2, "zombie must be skipped")
	assert.Equal(t, process.ProcessID(900001), found[0].PID)
	assert.Equal(t, process.ProcessID(900002), found[1].PID)
	assert.Equal(t, []string{`Z:\home\me\Bo\BO.EXE`, "-screen-fullscreen"}, found[0].Cmdline)

	_, err = finder.FindProcessByName("")
	assert.Error(t, err)
}

func TestFindProcessByPID(t *testing.T) {
	finder := &LinuxProcessFinder{Root: fakeProcRoot(t)}

	info, err := finder.FindProcessByPID(900004)
	require.NoError(t, err)
	assert.Equal(t, "bash", info.Name)
	assert.Equal(t, process.ProcessSleeping, info.State)
	assert.Equal(t, process.ProcessID(1), info.PPID)

	_, err = finder.FindProcessByPID(123456789)
	assert.Error(t, err)
}

func TestAlive(t *testing.T) {
	root := fakeProcRoot(t)
	finder := &LinuxProcessFinder{Root: root}

	assert.True(t, finder.Alive(900002))
	assert.False(t, finder.Alive(900003), "zombie")

	require.NoError(t, os.RemoveAll(filepath.Join(root, "900002")))
	assert.False(t, finder.Alive(900002))
}

func TestAttacher_WaitAttach(t *testing.T) {
	root := t.TempDir()
	opened := []process.ProcessID{}
	a := &Attacher{
		Finder:   &LinuxProcessFinder{Root: root},
		Interval: 5 * time.Millisecond,
		open: func(pid process.ProcessID) (process.Process, error) {
			opened = append(opened, pid)
			img := process_blob.NewProcessImage()
			img.PID = pid
			return img, nil
		},
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		writeFakeProc(t, root, 900010, "Bo.exe", "S", `C:\Bo\Bo.exe`)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	proc, err := a.WaitAttach(ctx, "Bo.exe")
	require.NoError(t, err)
	assert.Equal(t, process.ProcessID(900010), proc.GetPID())
	assert.Equal(t, []process.ProcessID{900010}, opened)
	assert.True(t, a.Alive(proc))
}

func TestAttacher_WaitAttachCancelled(t *testing.T) {
	a := &Attacher{
		Finder:   &LinuxProcessFinder{Root: t.TempDir()},
		Interval: 5 * time.Millisecond,
		open:     NewWithPID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.WaitAttach(ctx, "Bo.exe")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
