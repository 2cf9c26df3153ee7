package ingest

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
)

func TestStoreAndResolve(t *testing.T) {
	svc, err := NewService(t.TempDir(), arbor.NewLogger())
	require.NoError(t, err)

	stored, err := svc.Store([]byte("X,Y\n1,2\n"), "data.csv")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.FileID, "file_"))
	assert.Equal(t, "data.csv", stored.OriginalName)
	assert.Equal(t, ".csv", stored.FileType)

	path, err := svc.Resolve(stored.FileID)
	require.NoError(t, err)
	assert.Equal(t, stored.Path, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "X,Y\n1,2\n", string(content))
}

func TestStore_RejectsUnsupportedExtension(t *testing.T) {
	svc, err := NewService(t.TempDir(), arbor.NewLogger())
	require.NoError(t, err)

	_, err = svc.Store([]byte("MZ"), "malware.exe")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnsupportedType)
}

func TestStore_ExtensionCaseInsensitive(t *testing.T) {
	svc, err := NewService(t.TempDir(), arbor.NewLogger())
	require.NoError(t, err)

	stored, err := svc.Store([]byte("X\n1\n"), "DATA.CSV")
	require.NoError(t, err)
	assert.Equal(t, ".csv", stored.FileType)
}

func TestResolve_Unknown(t *testing.T) {
	svc, err := NewService(t.TempDir(), arbor.NewLogger())
	require.NoError(t, err)

	_, err = svc.Resolve("file_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_DistinctIdentifiers(t *testing.T) {
	svc, err := NewService(t.TempDir(), arbor.NewLogger())
	require.NoError(t, err)

	a, err := svc.Store([]byte("X\n1\n"), "same.csv")
	require.NoError(t, err)
	b, err := svc.Store([]byte("X\n2\n"), "same.csv")
	require.NoError(t, err)

	assert.NotEqual(t, a.FileID, b.FileID)
}
