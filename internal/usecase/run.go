package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/forPelevin/recap/internal/domain/chapters"
	"github.com/forPelevin/recap/internal/entries"
	"github.com/forPelevin/recap/internal/logging"
	"github.com/forPelevin/recap/internal/types"
	"github.com/forPelevin/recap/internal/workpool"
)

// State is the orchestrator's position in a run.
type State int

const (
	StateIdle State = iota
	StateGrouping
	StateClipProcessing
	StateConcatenating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGrouping:
		return "grouping"
	case StateClipProcessing:
		return "clip_processing"
	case StateConcatenating:
		return "concatenating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Failure stages.
const (
	StageSource = "source"
	StageCard   = "card"
	StageClip   = "clip"
	StageConcat = "concat"
)

type Input struct {
	RunID    string
	Entries  []types.Entry
	Variants []types.Variant
	Workers  int
}

type Failure struct {
	Subject string
	Variant types.Variant
	Stage   string
	Err     error
}

// Recap describes one show variant that was built or found in place.
type Recap struct {
	Key      types.ShowKey
	Title    string
	Path     string
	Skipped  bool
	Duration time.Duration
	Chapters []string
	Clips    []string
}

type Result struct {
	// Recaps maps a show ID to its recap files in variant order.
	Recaps       map[string][]string
	Outputs      []Recap
	Failures     []Failure
	Clips        int
	ClipsSkipped int
	Final        State
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func atStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &stageError{stage: stage, err: err}
}

type run struct {
	u     Usecase
	in    Input
	log   *slog.Logger
	state State
	since time.Time
}

func (r *run) enter(next State) {
	now := time.Now()
	if r.state != StateIdle {
		r.log.Info("stage finished",
			slog.String(logging.FieldStage, r.state.String()),
			slog.Duration(logging.FieldElapsed, now.Sub(r.since)),
		)
	}
	r.log.Debug("state transition", slog.String("from", r.state.String()), slog.String("to", next.String()))
	r.state = next
	r.since = now
}

type clipTask struct {
	show    int
	pos     int
	entry   types.Entry
	variant types.Variant
}

type concatTask struct {
	show  entries.Show
	key   types.ShowKey
	job   ConcatJob
	names []string
}

// Run drives a whole batch: group entries into shows, render every clip,
// then concatenate each complete show variant. Per-job failures are
// collected in Result; only cancellation aborts the run with an error.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	r := &run{u: u, in: in, log: u.log.With(slog.String(logging.FieldRunID, in.RunID))}
	res := Result{Recaps: make(map[string][]string)}
	variants := in.Variants
	if len(variants) == 0 {
		variants = types.Variants
	}

	r.enter(StateGrouping)
	shows := entries.Group(in.Entries)
	r.log.Info("grouped entries", slog.Int("entries", len(in.Entries)), slog.Int("shows", len(shows)))

	r.enter(StateClipProcessing)
	var tasks []clipTask
	for si, sh := range shows {
		for pos, e := range sh.Entries {
			for _, v := range variants {
				tasks = append(tasks, clipTask{show: si, pos: pos, entry: e, variant: v})
			}
		}
	}
	clipOuts := workpool.Run(ctx, in.Workers, tasks, r.clip)

	// paths[show][variant][pos]; an empty path marks a failed clip.
	paths := make([]map[types.Variant][]string, len(shows))
	for si, sh := range shows {
		paths[si] = make(map[types.Variant][]string, len(variants))
		for _, v := range variants {
			paths[si][v] = make([]string, len(sh.Entries))
		}
	}
	for _, o := range clipOuts {
		t := o.Job
		if o.Err != nil {
			if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
				continue
			}
			res.Failures = append(res.Failures, failure(t.entry.Label(), t.variant, StageClip, o.Err))
			continue
		}
		paths[t.show][t.variant][t.pos] = o.Result.Path
		res.Clips++
		if o.Result.Skipped {
			res.ClipsSkipped++
		}
	}
	if err := ctx.Err(); err != nil {
		r.enter(StateFailed)
		res.Final = StateFailed
		return res, err
	}

	r.enter(StateConcatenating)
	var jobs []concatTask
	for si, sh := range shows {
		for _, v := range variants {
			key := types.ShowKey{ShowID: sh.ID, Variant: v}
			clips := paths[si][v]
			if missing := countEmpty(clips); missing > 0 {
				res.Failures = append(res.Failures, Failure{
					Subject: sh.ID,
					Variant: v,
					Stage:   StageConcat,
					Err:     fmt.Errorf("%w: %d of %d clips missing", types.ErrIncompleteShow, missing, len(clips)),
				})
				continue
			}
			jobs = append(jobs, u.buildConcat(sh, key, clips))
		}
	}
	concatOuts := workpool.Run(ctx, in.Workers, jobs, r.concat)
	for _, o := range concatOuts {
		t := o.Job
		if o.Err != nil {
			if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
				continue
			}
			res.Failures = append(res.Failures, failure(t.show.ID, t.key.Variant, StageConcat, o.Err))
			continue
		}
		res.Recaps[t.show.ID] = append(res.Recaps[t.show.ID], o.Result.Path)
		res.Outputs = append(res.Outputs, o.Result)
	}
	if err := ctx.Err(); err != nil {
		r.enter(StateFailed)
		res.Final = StateFailed
		return res, err
	}

	r.enter(StateDone)
	res.Final = StateDone
	r.log.Info("run complete",
		slog.Int("recaps", len(res.Outputs)),
		slog.Int("clips", res.Clips),
		slog.Int("clips_cached", res.ClipsSkipped),
		slog.Int("failures", len(res.Failures)),
	)
	return res, nil
}

// buildConcat pairs every entry with its clip before ordering, so the
// reversed variant flips video and chapter titles together.
func (u Usecase) buildConcat(sh entries.Show, key types.ShowKey, clips []string) concatTask {
	type pair struct {
		entry types.Entry
		clip  string
	}
	pairs := make([]pair, len(sh.Entries))
	for i, e := range sh.Entries {
		pairs[i] = pair{entry: e, clip: clips[i]}
	}
	if key.Variant == types.Reversed {
		slices.Reverse(pairs)
	}

	ordered := make([]types.Entry, len(pairs))
	files := make([]string, len(pairs))
	for i, p := range pairs {
		ordered[i] = p.entry
		files[i] = p.clip
	}
	doc := chapters.Build(ordered, key.Variant, u.s.Fade, u.d.Names)
	return concatTask{
		show: sh,
		key:  key,
		job: ConcatJob{
			Clips:        files,
			Chapters:     doc,
			ChaptersPath: u.s.Layout.ChaptersPath(key),
			ManifestPath: u.s.Layout.ManifestPath(key),
			Destination:  u.s.Layout.RecapPath(key),
			Title:        sh.Title,
		},
		names: doc.Titles(),
	}
}

func (r *run) clip(ctx context.Context, t clipTask) (ClipResult, error) {
	start := time.Now()
	res, err := r.clipStages(ctx, t)
	ev := types.JobEvent{
		Kind:    StageClip,
		Subject: t.entry.Label(),
		Variant: t.variant,
		Status:  types.JobDone,
		Path:    res.Path,
		Elapsed: time.Since(start),
	}
	switch {
	case err != nil:
		ev.Status, ev.Err = types.JobFailed, err
		r.log.Error("clip failed",
			slog.String(logging.FieldEntry, t.entry.Label()),
			slog.String(logging.FieldVariant, t.variant.String()),
			slog.Any("error", err),
		)
	case res.Skipped:
		ev.Status = types.JobSkipped
	}
	r.u.record(ctx, r.in.RunID, ev)
	return res, err
}

func (r *run) clipStages(ctx context.Context, t clipTask) (ClipResult, error) {
	src, err := r.u.resolveSource(ctx, t.entry)
	if err != nil {
		return ClipResult{}, atStage(StageSource, err)
	}
	card, err := r.u.resolveCard(ctx, t.entry)
	if err != nil {
		return ClipResult{}, atStage(StageCard, err)
	}
	res, err := r.u.ProcessClip(ctx, ClipJob{Entry: t.entry, Variant: t.variant, Source: src, Overlay: card})
	return res, atStage(StageClip, err)
}

func (r *run) concat(ctx context.Context, t concatTask) (Recap, error) {
	start := time.Now()
	out := Recap{Key: t.key, Title: t.show.Title, Chapters: t.names, Clips: t.job.Clips}
	res, err := r.u.Concat(ctx, t.job)
	out.Path, out.Skipped = res.Path, res.Skipped

	ev := types.JobEvent{
		Kind:    StageConcat,
		Subject: t.show.ID,
		Variant: t.key.Variant,
		Status:  types.JobDone,
		Path:    res.Path,
		Elapsed: time.Since(start),
	}
	switch {
	case err != nil:
		ev.Status, ev.Err = types.JobFailed, err
		r.log.Error("recap failed",
			slog.String(logging.FieldShow, t.show.ID),
			slog.String(logging.FieldVariant, t.key.Variant.String()),
			slog.Any("error", err),
		)
	case res.Skipped:
		ev.Status = types.JobSkipped
	}
	r.u.record(ctx, r.in.RunID, ev)
	if err != nil {
		return out, atStage(StageConcat, err)
	}

	if r.u.d.Prober != nil {
		if d, perr := r.u.d.Prober.ProbeDuration(ctx, res.Path); perr != nil {
			r.log.Warn("probe recap duration failed", slog.String(logging.FieldPath, res.Path), slog.Any("error", perr))
		} else {
			out.Duration = d
		}
	}
	r.log.Info("recap ready",
		slog.String(logging.FieldShow, t.show.ID),
		slog.String(logging.FieldVariant, t.key.Variant.String()),
		slog.String(logging.FieldPath, res.Path),
		slog.Duration("duration", out.Duration),
		slog.Bool("cached", res.Skipped),
	)
	return out, nil
}

func failure(subject string, v types.Variant, fallback string, err error) Failure {
	stage := fallback
	var se *stageError
	if errors.As(err, &se) {
		stage = se.stage
	}
	return Failure{Subject: subject, Variant: v, Stage: stage, Err: err}
}

func countEmpty(paths []string) int {
	n := 0
	for _, p := range paths {
		if p == "" {
			n++
		}
	}
	return n
}
