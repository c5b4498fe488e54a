package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodule-ai/go-malignancy/models/model"
)

func TestListCheckpoints(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"finetune-vit", "finetune-hiera"} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, model.CheckpointFile), []byte("weights"), 0o644))
	}

	// A directory without a checkpoint and a stray file are both skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "incomplete"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	names, err := ListCheckpoints(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"finetune-hiera", "finetune-vit"}, names)
}

func TestListCheckpointsMissingRoot(t *testing.T) {
	_, err := ListCheckpoints(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
