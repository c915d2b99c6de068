//go:build integration

package itest

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// findRepoRoot walks up from this source file to the directory holding
// go.mod, so tests work regardless of the working directory.
func findRepoRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("cannot resolve itest source location")
	}
	for dir := filepath.Dir(file); ; {
		if st, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !st.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not locate go.mod")
		}
		dir = parent
	}
}
