// Package workpool fans typed jobs out over a fixed number of goroutines and
// hands results back in submission order.
package workpool

import (
	"context"
	"runtime"
	"sync"
)

// DefaultReserve is the number of CPUs left free for the transcoder's own
// threads and the rest of the system.
const DefaultReserve = 2

type Outcome[J, R any] struct {
	Job    J
	Result R
	Err    error
}

// Size returns the worker count for a run. Disabling parallelism always
// yields one worker; otherwise NumCPU minus reserve, never below one.
func Size(parallel bool, reserve int) int {
	if !parallel {
		return 1
	}
	if reserve < 0 {
		reserve = 0
	}
	n := runtime.NumCPU() - reserve
	if n < 1 {
		return 1
	}
	return n
}

// Run executes fn for every job on at most workers goroutines. Outcomes are
// indexed like jobs. Once ctx is done no further jobs are started; those
// jobs report ctx.Err().
func Run[J, R any](ctx context.Context, workers int, jobs []J, fn func(context.Context, J) (R, error)) []Outcome[J, R] {
	out := make([]Outcome[J, R], len(jobs))
	for i, j := range jobs {
		out[i].Job = j
	}
	if len(jobs) == 0 {
		return out
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				if err := ctx.Err(); err != nil {
					out[i].Err = err
					continue
				}
				out[i].Result, out[i].Err = fn(ctx, jobs[i])
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(jobs); next++ {
		select {
		case idx <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(idx)
	wg.Wait()

	for i := next; i < len(jobs); i++ {
		out[i].Err = ctx.Err()
	}
	return out
}

// Errs collects the non-nil errors in job order.
func Errs[J, R any](outs []Outcome[J, R]) []error {
	var errs []error
	for _, o := range outs {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}
