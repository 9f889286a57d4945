// Package pipeline executes the generation stages in a fixed order with
// two bounded validation loops: one around the world design and one
// around the crime logic. Verdict slots are filled by the validator
// stages; routing on those verdicts happens here.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caseworks/mysteryforge/internal/db"
	"github.com/caseworks/mysteryforge/internal/game"
)

// Stage is one unit of the pipeline. Optional stages degrade on error
// instead of aborting the run.
type Stage struct {
	ID       string
	Run      func(ctx context.Context, st *game.State) error
	Optional bool
}

// Loop ties a validator stage to the entry stage execution jumps back to
// when the verdict is negative. The retry counter lives on the state so
// it survives snapshots; the executor alone mutates it.
type Loop struct {
	Entry     string
	Validator string
	// Verdict reads the validator's slot and reports pass/fail plus the
	// issues and suggested fixes to surface on permanent failure.
	Verdict  func(st *game.State) (ok bool, issues []game.ValidationIssue, fixes []string)
	Count    func(st *game.State) int
	SetCount func(st *game.State, n int)
	Max      func(st *game.State) int
}

// ValidationFailedError is returned when a validation loop exhausts its
// retries. Issues and fixes are carried verbatim for the caller to print.
type ValidationFailedError struct {
	Stage          string
	Issues         []game.ValidationIssue
	SuggestedFixes []string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("%s: design rejected after retries (%d issues)", e.Stage, len(e.Issues))
}

// Executor runs stages in declaration order, re-entering loop sections
// when a validator rejects the design.
type Executor struct {
	stages   []Stage
	loops    map[string]Loop // keyed by validator stage ID
	progress io.Writer
	store    *Store
	ledger   *db.DB
	runID    string
}

// NewExecutor builds an Executor over the given stages and loops. Every
// loop's Entry and Validator must name a declared stage, with Entry
// ordered before Validator.
func NewExecutor(stages []Stage, loops []Loop) (*Executor, error) {
	index := stageIndex(stages)
	byValidator := make(map[string]Loop, len(loops))
	for _, loop := range loops {
		ei, ok := index[loop.Entry]
		if !ok {
			return nil, fmt.Errorf("loop entry %q is not a stage", loop.Entry)
		}
		vi, ok := index[loop.Validator]
		if !ok {
			return nil, fmt.Errorf("loop validator %q is not a stage", loop.Validator)
		}
		if ei >= vi {
			return nil, fmt.Errorf("loop entry %q must precede validator %q", loop.Entry, loop.Validator)
		}
		byValidator[loop.Validator] = loop
	}
	return &Executor{stages: stages, loops: byValidator}, nil
}

// SetProgress sets a writer for human-readable stage progress.
func (e *Executor) SetProgress(w io.Writer) {
	e.progress = w
}

// SetStore enables per-stage state snapshots.
func (e *Executor) SetStore(s *Store) {
	e.store = s
}

// SetLedger mirrors stage events into the run database. Ledger writes are
// best-effort and never fail the run.
func (e *Executor) SetLedger(d *db.DB, runID string) {
	e.ledger = d
	e.runID = runID
}

func (e *Executor) logf(format string, args ...interface{}) {
	if e.progress != nil {
		fmt.Fprintf(e.progress, format+"\n", args...)
	}
}

func (e *Executor) event(stage, event string, attempt int, started time.Time, detail string) {
	if e.ledger == nil {
		return
	}
	ms := int(time.Since(started).Milliseconds())
	_ = e.ledger.LogRunEvent(e.runID, stage, event, attempt, ms, detail)
}

// Run executes the pipeline to completion. It returns nil on success,
// ctx.Err() on cancellation, a *ValidationFailedError when a loop
// exhausts its retries, and the wrapped stage error otherwise.
func (e *Executor) Run(ctx context.Context, st *game.State) error {
	index := stageIndex(e.stages)
	seq := 0

	for i := 0; i < len(e.stages); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stage := e.stages[i]
		attempt := e.attemptFor(stage.ID, st)
		started := time.Now()

		e.logf("[%s] running", stage.ID)
		e.event(stage.ID, "started", attempt, started, "")

		if err := stage.Run(ctx, st); err != nil {
			if stage.Optional {
				e.logf("[%s] skipped: %v", stage.ID, err)
				e.event(stage.ID, "skipped", attempt, started, err.Error())
				continue
			}
			e.event(stage.ID, "failed", attempt, started, err.Error())
			return fmt.Errorf("stage %s: %w", stage.ID, err)
		}

		seq++
		e.snapshot(seq, stage.ID, st)

		loop, isValidator := e.loops[stage.ID]
		if !isValidator {
			e.logf("[%s] done", stage.ID)
			e.event(stage.ID, "completed", attempt, started, "")
			continue
		}

		ok, issues, fixes := loop.Verdict(st)
		if ok {
			loop.SetCount(st, 0)
			e.logf("[%s] passed", stage.ID)
			e.event(stage.ID, "completed", attempt, started, "")
			continue
		}

		count := loop.Count(st)
		if count < loop.Max(st) {
			loop.SetCount(st, count+1)
			e.logf("[%s] rejected, retrying from %s (attempt %d/%d)", stage.ID, loop.Entry, count+1, loop.Max(st))
			e.event(stage.ID, "retry", attempt, started, issueSummary(issues))
			i = index[loop.Entry] - 1
			continue
		}

		e.logf("[%s] rejected after %d retries", stage.ID, count)
		e.event(stage.ID, "failed", attempt, started, issueSummary(issues))
		return &ValidationFailedError{Stage: stage.ID, Issues: issues, SuggestedFixes: fixes}
	}
	return nil
}

// attemptFor reports which attempt of a validator stage is about to run;
// non-validator stages always report 1.
func (e *Executor) attemptFor(stageID string, st *game.State) int {
	if loop, ok := e.loops[stageID]; ok {
		return loop.Count(st) + 1
	}
	return 1
}

func (e *Executor) snapshot(seq int, stage string, st *game.State) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveSnapshot(seq, stage, st); err != nil {
		e.logf("[%s] snapshot failed: %v", stage, err)
	}
	if err := e.store.SaveState(st); err != nil {
		e.logf("[%s] state save failed: %v", stage, err)
	}
}

func issueSummary(issues []game.ValidationIssue) string {
	if len(issues) == 0 {
		return ""
	}
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = fmt.Sprintf("[%s] %s", issue.Type, issue.Description)
	}
	return strings.Join(parts, "; ")
}

func stageIndex(stages []Stage) map[string]int {
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		index[s.ID] = i
	}
	return index
}
