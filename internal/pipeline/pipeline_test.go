package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/forPelevin/recap/internal/config"
	"github.com/forPelevin/recap/internal/ledger"
	"github.com/forPelevin/recap/internal/types"
	"github.com/forPelevin/recap/internal/usecase"
)

const entriesCSV = `show,running_order,country,artist,title,snippet_start,snippet_end
2024_final,1,SWE,Alpha,One,0:10,0:20
2024_final,2,NOR,Beta,Two,0:05,0:17
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TmpDir = filepath.Join(root, "tmp")
	cfg.Paths.OutputDir = filepath.Join(root, "out")
	cfg.Paths.VideosDir = filepath.Join(root, "videos")
	cfg.Paths.CardsDir = filepath.Join(root, "cards")
	cfg.Paths.LedgerPath = filepath.Join(root, "tmp", "ledger.db")
	cfg.Downloads.Enabled = false
	cfg.Workers.Parallel = false
	return &cfg
}

func writeEntries(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "entries.csv")
	if err := os.WriteFile(p, []byte(entriesCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// Without source videos every clip fails before a tool is started, which
// exercises the wiring without ffmpeg installed.
func TestRun_MissingInputsRecordsFailures(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	sum, err := Run(context.Background(), cfg, Options{Input: writeEntries(t)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.RunID == "" {
		t.Fatal("missing run id")
	}
	if sum.Result.Final != usecase.StateDone {
		t.Fatalf("final=%s", sum.Result.Final)
	}
	// 2 entries x 2 variants clip failures, plus one incomplete-show failure per variant.
	if got := len(sum.Result.Failures); got != 6 {
		t.Fatalf("failures=%d: %v", got, sum.Result.Failures)
	}

	b, err := os.ReadFile(sum.Manifest)
	if err != nil {
		t.Fatal(err)
	}
	var m types.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m.RunID != sum.RunID || len(m.Recaps) != 0 || len(m.Failures) != 6 {
		t.Fatalf("manifest=%+v", m)
	}

	store, err := ledger.Open(context.Background(), cfg.Paths.LedgerPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runs, err := store.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != ledger.RunPartial || runs[0].Failures != 6 {
		t.Fatalf("runs=%+v", runs)
	}
	jobs, err := store.Jobs(context.Background(), sum.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 4 {
		t.Fatalf("jobs=%d", len(jobs))
	}
}

func TestRun_LockedWorkspace(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.Paths.TmpDir, 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(filepath.Join(cfg.Paths.TmpDir, lockName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = Run(context.Background(), cfg, Options{Input: writeEntries(t)})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRun_BadInput(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), testConfig(t), Options{Input: filepath.Join(t.TempDir(), "nope.csv")})
	if err == nil || !strings.Contains(err.Error(), "load entries") {
		t.Fatalf("err=%v", err)
	}
}

func TestVariants(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if got := variants(&cfg); len(got) != 2 || got[0] != types.Straight || got[1] != types.Reversed {
		t.Fatalf("variants=%v", got)
	}
	cfg.Variants.Straight = false
	if got := variants(&cfg); len(got) != 1 || got[0] != types.Reversed {
		t.Fatalf("variants=%v", got)
	}
}

func TestSettings_FadeFromSeconds(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Video.FadeSeconds = 0.5
	s := settings(&cfg)
	if s.Fade != 500*time.Millisecond || s.Width != 1920 || s.Loudness.IntegratedLUFS != -14 {
		t.Fatalf("settings=%+v", s)
	}
}

func TestBuildManifest(t *testing.T) {
	t.Parallel()

	res := usecase.Result{
		Outputs: []usecase.Recap{{
			Key:      types.ShowKey{ShowID: "s", Variant: types.Reversed},
			Title:    "S",
			Path:     "/out/s_recap_rev.mp4",
			Duration: 90 * time.Second,
			Chapters: []string{"b", "a"},
			Clips:    []string{"/c/2.mp4", "/c/1.mp4"},
		}},
		Failures: []usecase.Failure{{Subject: "t", Variant: types.Straight, Stage: usecase.StageConcat, Err: types.ErrIncompleteShow}},
	}
	m := buildManifest("id", "/in.csv", res)
	if len(m.Recaps) != 1 || m.Recaps[0].Variant != "reversed" || m.Recaps[0].DurationSec != 90 {
		t.Fatalf("recaps=%+v", m.Recaps)
	}
	if len(m.Failures) != 1 || m.Failures[0].Stage != "concat" || m.Failures[0].Variant != "straight" {
		t.Fatalf("failures=%+v", m.Failures)
	}
}

func TestCleanupKeepsLedger(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	for _, p := range []string{"clips/s/a.mp4", "recaps/s_recap.txt", "ledger.db"} {
		full := filepath.Join(tmp, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := cleanup(tmp); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "clips")); !os.IsNotExist(err) {
		t.Fatalf("clips dir still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "ledger.db")); err != nil {
		t.Fatalf("ledger removed: %v", err)
	}
}
