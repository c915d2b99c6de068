package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/forPelevin/recap/internal/types"
)

// fakeTranscoder writes a placeholder file to the output argument and
// records every invocation.
type fakeTranscoder struct {
	mu    sync.Mutex
	calls [][]string
	// failOn makes calls whose arguments mention the substring fail after
	// writing partial output.
	failOn string
}

func (f *fakeTranscoder) Transcode(_ context.Context, args []string) error {
	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(args))
	f.mu.Unlock()

	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
		return err
	}
	if f.failOn != "" && slices.ContainsFunc(args, func(a string) bool { return strings.Contains(a, f.failOn) }) {
		return &types.ToolError{Tool: "ffmpeg", Args: args, Output: "Conversion failed!", Err: errors.New("exit status 1")}
	}
	return nil
}

func (f *fakeTranscoder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// concatCalls returns the invocations that used the concat demuxer.
func (f *fakeTranscoder) concatCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		if slices.Contains(c, "concat") {
			out = append(out, c)
		}
	}
	return out
}

type fakeDownloader struct {
	mu    sync.Mutex
	links []string
}

func (f *fakeDownloader) Download(_ context.Context, link, outPath string) error {
	f.mu.Lock()
	f.links = append(f.links, link)
	f.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

type fakeRasterizer struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _, outPath string, _, _ int) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return os.WriteFile(outPath, []byte("png"), 0o644)
}

type fakeProber struct{ d time.Duration }

func (f fakeProber) ProbeDuration(context.Context, string) (time.Duration, error) { return f.d, nil }

type fakeRecorder struct {
	mu     sync.Mutex
	events []types.JobEvent
}

func (f *fakeRecorder) RecordJob(_ context.Context, _ string, ev types.JobEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type mapNamer map[string]string

func (m mapNamer) Name(code string) string { return m[code] }

// workspace lays out source videos and cards for entries under a temp dir.
type workspace struct {
	layout Layout
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	l := Layout{
		TmpDir:    filepath.Join(root, "tmp"),
		OutputDir: filepath.Join(root, "out"),
		VideosDir: filepath.Join(root, "videos"),
		CardsDir:  filepath.Join(root, "cards"),
	}
	for _, d := range []string{l.VideosDir, l.CardsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return workspace{layout: l}
}

func (w workspace) addInputs(t *testing.T, es ...types.Entry) {
	t.Helper()
	for _, e := range es {
		touch(t, w.layout.SourcePath(e))
		touch(t, w.layout.CardPath(e))
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testEntry(show, ro, country string, start, end time.Duration) types.Entry {
	return types.Entry{
		ShowID:       show,
		RunningOrder: ro,
		Country:      country,
		Artist:       "Artist " + ro,
		Title:        "Song " + ro,
		Snippet:      types.Window{Start: start, End: end},
	}
}

func testSettings(l Layout) Settings {
	return Settings{
		Layout:       l,
		Width:        1920,
		Height:       1080,
		FPS:          60,
		Fade:         250 * time.Millisecond,
		OverlayScale: 0.925,
		CRF:          18,
		Preset:       "medium",
		AudioKbps:    192,
	}
}

func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func partFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.Contains(filepath.Base(p), ".part") {
			out = append(out, p)
		}
		return nil
	})
	return out
}
