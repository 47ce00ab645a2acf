package hid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeUDCState(t *testing.T, root, udc, suspended string) {
	t.Helper()
	dir := filepath.Join(root, udc, "gadget")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "suspended"), []byte(suspended+"\n"), 0o644))
}
