package models

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/nodule-ai/go-malignancy/models/model"
)

// ListCheckpoints reads the model names deployable under a model root: the
// subdirectories that contain the well-known checkpoint file.
//
// Arguments:
//   - root: Directory holding one subdirectory per model name.
//
// Returns:
//   - []string: Sorted model names with a loadable checkpoint.
//   - error: Error if the root cannot be read.
func ListCheckpoints(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ckpt := filepath.Join(root, entry.Name(), model.CheckpointFile)
		if _, err := os.Stat(ckpt); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names, nil
}
