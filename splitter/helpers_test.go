package splitter

import (
	"os"
	"testing"
	"time"

	"bosplit/binder"

	"github.com/stretchr/testify/require"
)

// writeFile replaces a settings file and bumps its mtime so a reload within
// the same clock tick still notices.
func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	later := time.Now().Add(time.Duration(len(content)) * time.Second)
	return os.Chtimes(path, later, later)
}

func encode[T any](t *testing.T, c *binder.Class[T], v T) []byte {
	t.Helper()
	data, err := c.Encode(v)
	require.NoError(t, err)
	return data
}
