package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/yaklabco/mdfmt/pkg/edit"
	"github.com/yaklabco/mdfmt/pkg/format"
	"github.com/yaklabco/mdfmt/pkg/fsutil"
)

// ErrEditMismatch means applying a file's edits did not produce its
// canonical text. The file is left untouched.
var ErrEditMismatch = errors.New("edit mismatch")

// Runner formats files with a worker pool.
type Runner struct {
	formatter *format.Formatter
}

// New creates a Runner that formats with f.
func New(f *format.Formatter) *Runner {
	return &Runner{formatter: f}
}

// Run discovers files under opts.Paths and formats them concurrently.
// Outcomes are ordered by path regardless of completion order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range workCh {
				outcome := r.processFile(ctx, path, workDir, opts)
				select {
				case <-ctx.Done():
					return
				case outCh <- outcome:
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

// processFile formats one file. Failures are recorded in the outcome so
// one bad file does not stop the run.
func (r *Runner) processFile(ctx context.Context, path, workDir string, opts Options) FileOutcome {
	outcome := FileOutcome{Path: path, RelPath: path}
	if rel, err := filepath.Rel(workDir, path); err == nil {
		outcome.RelPath = rel
	}

	content, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	original := string(content)
	res, err := r.formatter.Document(original)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	outcome.Canonical = res.Canonical
	if res.Skipped != nil {
		outcome.Skipped = true
		outcome.SkipReason = res.Skipped.Error()
		return outcome
	}

	if !res.Changed() {
		return outcome
	}
	outcome.Changed = true
	outcome.Edits = len(res.Edits)

	if opts.Diff {
		outcome.Diff = edit.GenerateDiff(filepath.ToSlash(outcome.RelPath), original, res.Canonical)
	}

	if !opts.Write {
		return outcome
	}

	// The file is rewritten from the edits rather than from the canonical
	// text, so a bad edit list fails the file instead of being written.
	prepared, err := edit.Prepare(res.Edits, len(original))
	if err != nil {
		outcome.Error = fmt.Errorf("prepare edits: %w", err)
		return outcome
	}
	updated := edit.Apply(original, prepared)
	if updated != res.Canonical {
		outcome.Error = fmt.Errorf("%w: edits for %s do not reproduce the canonical text", ErrEditMismatch, outcome.RelPath)
		return outcome
	}

	changed, err := fsutil.Changed(ctx, snap)
	if err != nil {
		outcome.Error = fmt.Errorf("check modified: %w", err)
		return outcome
	}
	if changed {
		outcome.Skipped = true
		outcome.SkipReason = "file modified during formatting"
		return outcome
	}

	if err := fsutil.WriteAtomic(ctx, path, []byte(updated), snap.Mode); err != nil {
		outcome.Error = fmt.Errorf("write %s: %w", outcome.RelPath, err)
		return outcome
	}
	outcome.Written = true
	return outcome
}
