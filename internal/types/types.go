package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Variant selects the play order of a recap.
type Variant int

const (
	Straight Variant = iota
	Reversed
)

// Variants lists every variant in processing order.
var Variants = []Variant{Straight, Reversed}

func (v Variant) String() string {
	switch v {
	case Straight:
		return "straight"
	case Reversed:
		return "reversed"
	default:
		return "variant(" + strconv.Itoa(int(v)) + ")"
	}
}

// ParseVariant accepts the tag strings produced by String.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "straight", "s":
		return Straight, nil
	case "reversed", "reverse", "rev", "r":
		return Reversed, nil
	}
	return 0, fmt.Errorf("unknown variant %q", s)
}

// Window is a time range on a source video's timeline.
type Window struct {
	Start time.Duration
	End   time.Duration
}

func (w Window) Duration() time.Duration { return w.End - w.Start }

// Entry is one contestant performance within a show.
type Entry struct {
	ShowID       string
	ShowTitle    string
	RunningOrder string
	Country      string
	DisplayName  string
	Artist       string
	Title        string

	Snippet    Window
	AltSnippet *Window

	VideoLink string

	// Index is the row position in the input file.
	Index int
}

// Window returns the requested highlight window for a variant. The straight
// variant prefers the alternate window when one was given.
func (e Entry) Window(v Variant) Window {
	if v == Straight && e.AltSnippet != nil {
		return *e.AltSnippet
	}
	return e.Snippet
}

// Base is the file stem shared by an entry's source video, card and clips.
func (e Entry) Base() string {
	return fmt.Sprintf("%s_%s_%s", e.ShowID, e.RunningOrder, e.Country)
}

func (e Entry) Label() string {
	return fmt.Sprintf("%s #%s %s", e.ShowID, e.RunningOrder, e.Country)
}

// ClipKey identifies one cached clip.
type ClipKey struct {
	ShowID       string
	RunningOrder string
	Country      string
	Variant      Variant
}

func KeyOf(e Entry, v Variant) ClipKey {
	return ClipKey{ShowID: e.ShowID, RunningOrder: e.RunningOrder, Country: e.Country, Variant: v}
}

func (k ClipKey) FileName() string {
	return fmt.Sprintf("%s_%s_%s_%s.mp4", k.ShowID, k.RunningOrder, k.Country, k.Variant)
}

func (k ClipKey) Show() ShowKey { return ShowKey{ShowID: k.ShowID, Variant: k.Variant} }

// ShowKey groups clips into one recap.
type ShowKey struct {
	ShowID  string
	Variant Variant
}

func (k ShowKey) String() string { return k.ShowID + "/" + k.Variant.String() }

// RecapName is the output file stem for a show variant.
func (k ShowKey) RecapName() string {
	if k.Variant == Reversed {
		return k.ShowID + "_recap_rev"
	}
	return k.ShowID + "_recap"
}

type Manifest struct {
	RunID    string            `json:"run_id"`
	Input    string            `json:"input"`
	Recaps   []ManifestRecap   `json:"recaps"`
	Failures []ManifestFailure `json:"failures,omitempty"`
}

type ManifestRecap struct {
	Show        string   `json:"show"`
	Variant     string   `json:"variant"`
	Title       string   `json:"title"`
	File        string   `json:"file"`
	DurationSec float64  `json:"duration_sec,omitempty"`
	Chapters    []string `json:"chapters"`
	Clips       []string `json:"clips"`
}

type ManifestFailure struct {
	Subject string `json:"subject"`
	Variant string `json:"variant"`
	Stage   string `json:"stage"`
	Error   string `json:"error"`
}

// JobStatus is the outcome of one clip or recap job.
type JobStatus string

const (
	JobDone    JobStatus = "done"
	JobSkipped JobStatus = "skipped"
	JobFailed  JobStatus = "failed"
)

// JobEvent is reported once per finished clip or recap job.
type JobEvent struct {
	Kind    string
	Subject string
	Variant Variant
	Status  JobStatus
	Path    string
	Err     error
	Elapsed time.Duration
}
