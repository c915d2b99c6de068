package usecase

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/forPelevin/recap/internal/types"
)

// Layout maps entries and show variants to files. Every artifact path is a
// pure function of its key, so re-runs find earlier results by existence.
type Layout struct {
	TmpDir    string
	OutputDir string
	VideosDir string
	CardsDir  string
}

func (l Layout) SourcePath(e types.Entry) string {
	return filepath.Join(l.VideosDir, e.Base()+".mp4")
}

func (l Layout) CardPath(e types.Entry) string {
	return filepath.Join(l.CardsDir, e.Base()+".png")
}

func (l Layout) CardSVGPath(e types.Entry) string {
	return filepath.Join(l.CardsDir, e.Base()+".svg")
}

func (l Layout) ClipPath(k types.ClipKey) string {
	return filepath.Join(l.TmpDir, "clips", k.ShowID, k.FileName())
}

func (l Layout) RecapPath(k types.ShowKey) string {
	return filepath.Join(l.OutputDir, k.RecapName()+".mp4")
}

func (l Layout) ManifestPath(k types.ShowKey) string {
	return filepath.Join(l.TmpDir, "recaps", k.RecapName()+".txt")
}

func (l Layout) ChaptersPath(k types.ShowKey) string {
	return filepath.Join(l.TmpDir, "recaps", k.RecapName()+".meta.txt")
}

// tempPath returns a unique sibling of dest that keeps its extension, since
// some tools pick the output format from it.
func tempPath(dest string) string {
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	return stem + "." + uuid.NewString()[:8] + ".part" + ext
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// commit moves a finished temp file into place.
func commit(tmp, dest string) error {
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
