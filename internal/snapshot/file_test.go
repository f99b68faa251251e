// internal/snapshot/file_test.go
package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/logger"
	"match-engine/pkg/registry"
)

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	doc := `[
		{"userId": "user-b", "responses": {"q_exercise": {"answer": 2}}},
		{"userId": "user-a", "responses": {"q_exercise": {"answer": 4}}}
	]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	users, err := NewFileLoader(path, registry.Default(), logger.NewTestLogger(t)).Load()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user-a", string(users[0].ID))
	assert.Equal(t, "user-b", string(users[1].ID))
}

func TestFileLoader_MissingFile(t *testing.T) {
	_, err := NewFileLoader("/does/not/exist.json", registry.Default(), logger.NewTestLogger(t)).Load()
	assert.Error(t, err)
}
