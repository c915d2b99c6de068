package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/recap/internal/domain/chapters"
)

func concatFixture(t *testing.T, dir string) ConcatJob {
	t.Helper()
	a := filepath.Join(dir, "clips", "a.mp4")
	b := filepath.Join(dir, "clips", "it's.mp4")
	touch(t, a)
	touch(t, b)
	return ConcatJob{
		Clips: []string{b, a},
		Chapters: chapters.Document{Chapters: []chapters.Chapter{
			{Start: time.Second, End: 6 * time.Second, Title: "Norway: B - Two"},
			{Start: 7 * time.Second, End: 12 * time.Second, Title: "Sweden: A - One"},
		}},
		ChaptersPath: filepath.Join(dir, "recaps", "show_recap_rev.meta.txt"),
		ManifestPath: filepath.Join(dir, "recaps", "show_recap_rev.txt"),
		Destination:  filepath.Join(dir, "out", "show_recap_rev.mp4"),
		Title:        "Grand Final",
	}
}

func TestConcat_WritesManifestChaptersAndRecap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	job := concatFixture(t, dir)
	tc := &fakeTranscoder{}
	uc := New(Deps{Transcoder: tc}, Settings{})

	res, err := uc.Concat(context.Background(), job)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	if res.Skipped || res.Path != job.Destination {
		t.Fatalf("res=%+v", res)
	}

	manifest, err := os.ReadFile(job.ManifestPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "file '" + strings.ReplaceAll(job.Clips[0], "'", `'\''`) + "'\n" + "file '" + job.Clips[1] + "'\n"
	if string(manifest) != want {
		t.Fatalf("manifest mismatch\n got: %q\nwant: %q", manifest, want)
	}

	meta, err := os.ReadFile(job.ChaptersPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(meta), ";FFMETADATA1\n") || strings.Count(string(meta), "[CHAPTER]") != 2 {
		t.Fatalf("chapters doc:\n%s", meta)
	}

	args := tc.calls[0]
	if argAfter(args, "-f") != "concat" || argAfter(args, "-safe") != "0" || argAfter(args, "-c") != "copy" {
		t.Fatalf("not a stream-copy concat: %v", args)
	}
	if argAfter(args, "-metadata") != "title=Grand Final" || argAfter(args, "-map_chapters") != "1" {
		t.Fatalf("metadata args: %v", args)
	}
	if argAfter(args, "-movflags") != "+faststart" {
		t.Fatalf("movflags: %v", args)
	}
	for _, a := range args {
		if a == "libx264" || a == "-filter_complex" {
			t.Fatalf("concat must not re-encode: %v", args)
		}
	}
	if _, err := os.Stat(job.Destination); err != nil {
		t.Fatalf("recap not committed: %v", err)
	}
}

func TestConcat_SkipsExistingDestination(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	job := concatFixture(t, dir)
	touch(t, job.Destination)
	tc := &fakeTranscoder{}
	uc := New(Deps{Transcoder: tc}, Settings{})

	res, err := uc.Concat(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Skipped || tc.count() != 0 {
		t.Fatalf("skipped=%v calls=%d", res.Skipped, tc.count())
	}
	if _, err := os.Stat(job.ChaptersPath); !os.IsNotExist(err) {
		t.Fatalf("chapters must only be written for recaps being built, stat err=%v", err)
	}
}

func TestConcat_FailureRemovesTemp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	job := concatFixture(t, dir)
	tc := &fakeTranscoder{failOn: "concat"}
	uc := New(Deps{Transcoder: tc}, Settings{})

	if _, err := uc.Concat(context.Background(), job); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(job.Destination); !os.IsNotExist(err) {
		t.Fatalf("destination must not exist, stat err=%v", err)
	}
	if left := partFiles(t, filepath.Join(dir, "out")); len(left) != 0 {
		t.Fatalf("temp files left behind: %v", left)
	}
}

func TestConcat_NoClips(t *testing.T) {
	t.Parallel()

	uc := New(Deps{Transcoder: &fakeTranscoder{}}, Settings{})
	if _, err := uc.Concat(context.Background(), ConcatJob{Destination: "x.mp4"}); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}
