package filestore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigboard/gigboard/internal/domain/fault"
)

func TestSave(t *testing.T) {
	store, err := New(t.TempDir(), 1024, "/uploads/")
	require.NoError(t, err)

	t.Run("stores file under random name", func(t *testing.T) {
		saved, err := store.Save("draft.PDF", strings.NewReader("content"))
		require.NoError(t, err)
		assert.Equal(t, int64(7), saved.Size)
		assert.True(t, strings.HasPrefix(saved.URL, "/uploads/"))
		assert.True(t, strings.HasSuffix(saved.URL, ".pdf"))
		assert.NotContains(t, saved.URL, "draft")
	})

	t.Run("rejects oversize upload", func(t *testing.T) {
		_, err := store.Save("big.bin", strings.NewReader(strings.Repeat("x", 2048)))
		assert.True(t, fault.IsKind(err, fault.KindInvalid))
	})

	t.Run("strips suspicious extension", func(t *testing.T) {
		saved, err := store.Save("weird.name/with\\slashes", strings.NewReader("x"))
		require.NoError(t, err)
		name := strings.TrimPrefix(saved.URL, "/uploads/")
		assert.NotContains(t, name, "/")
		assert.NotContains(t, name, "\\")
	})
}
