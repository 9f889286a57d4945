package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/caseworks/mysteryforge/internal/config"
	"github.com/caseworks/mysteryforge/internal/game"
)

func execState() *game.State {
	return game.NewState(&config.Config{Game: config.Game{Language: "en"}})
}

// worldLoop builds a loop over the world counter whose verdict is driven
// by the test through the returned setter.
func worldLoop(entry, validator string) (Loop, func(ok bool)) {
	pass := false
	loop := Loop{
		Entry:     entry,
		Validator: validator,
		Verdict: func(st *game.State) (bool, []game.ValidationIssue, []string) {
			if pass {
				return true, nil, nil
			}
			return false,
				[]game.ValidationIssue{{Type: "logic_gap", Description: "nobody could reach the study"}},
				[]string{"give someone a reason to be near the study"}
		},
		Count:    func(st *game.State) int { return st.WorldRetryCount },
		SetCount: func(st *game.State, n int) { st.WorldRetryCount = n },
		Max:      func(st *game.State) int { return st.MaxWorldRetries },
	}
	return loop, func(ok bool) { pass = ok }
}

func countingStage(id string, runs *[]string) Stage {
	return Stage{ID: id, Run: func(ctx context.Context, st *game.State) error {
		*runs = append(*runs, id)
		return nil
	}}
}

func runCount(runs []string, id string) int {
	n := 0
	for _, r := range runs {
		if r == id {
			n++
		}
	}
	return n
}

func TestRun_SinglePassOrder(t *testing.T) {
	var runs []string
	loop, setPass := worldLoop("entry", "validate")
	setPass(true)

	e, err := NewExecutor([]Stage{
		countingStage("entry", &runs),
		countingStage("validate", &runs),
		countingStage("after", &runs),
	}, []Loop{loop})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	st := execState()
	if err := e.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"entry", "validate", "after"}
	if len(runs) != len(want) {
		t.Fatalf("runs = %v, want %v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("runs[%d] = %q, want %q", i, runs[i], want[i])
		}
	}
	if st.WorldRetryCount != 0 {
		t.Errorf("counter = %d, want 0", st.WorldRetryCount)
	}
}

func TestRun_RetryThenPass(t *testing.T) {
	var runs []string
	loop, setPass := worldLoop("entry", "validate")

	// Reject twice, then pass on the third validation.
	rejections := 2
	base := loop.Verdict
	loop.Verdict = func(st *game.State) (bool, []game.ValidationIssue, []string) {
		if runCount(runs, "validate") > rejections {
			setPass(true)
		}
		return base(st)
	}

	e, err := NewExecutor([]Stage{
		countingStage("entry", &runs),
		countingStage("between", &runs),
		countingStage("validate", &runs),
		countingStage("after", &runs),
	}, []Loop{loop})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	st := execState()
	if err := e.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := runCount(runs, "entry"); got != rejections+1 {
		t.Errorf("entry ran %d times, want %d", got, rejections+1)
	}
	// Retry re-enters at the entry stage, so everything between entry and
	// validator re-runs too.
	if got := runCount(runs, "between"); got != rejections+1 {
		t.Errorf("between ran %d times, want %d", got, rejections+1)
	}
	if got := runCount(runs, "after"); got != 1 {
		t.Errorf("after ran %d times, want 1", got)
	}
	if st.WorldRetryCount != 0 {
		t.Errorf("counter = %d after pass, want 0", st.WorldRetryCount)
	}
}

func TestRun_ExhaustedRetries(t *testing.T) {
	var runs []string
	loop, _ := worldLoop("entry", "validate")

	e, err := NewExecutor([]Stage{
		countingStage("entry", &runs),
		countingStage("validate", &runs),
		countingStage("after", &runs),
	}, []Loop{loop})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	st := execState() // MaxWorldRetries = 2
	err = e.Run(context.Background(), st)

	var vErr *ValidationFailedError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want *ValidationFailedError", err)
	}
	if vErr.Stage != "validate" {
		t.Errorf("failed stage = %q", vErr.Stage)
	}
	if len(vErr.Issues) != 1 || vErr.Issues[0].Description != "nobody could reach the study" {
		t.Errorf("issues = %+v", vErr.Issues)
	}
	if len(vErr.SuggestedFixes) != 1 {
		t.Errorf("fixes = %v", vErr.SuggestedFixes)
	}

	// Initial run plus one re-entry per allowed retry.
	want := st.MaxWorldRetries + 1
	if got := runCount(runs, "entry"); got != want {
		t.Errorf("entry ran %d times, want %d", got, want)
	}
	if got := runCount(runs, "validate"); got != want {
		t.Errorf("validate ran %d times, want %d", got, want)
	}
	if runCount(runs, "after") != 0 {
		t.Error("stages after a failed validator must not run")
	}
}

func TestRun_OptionalStageDegrades(t *testing.T) {
	var runs []string
	e, err := NewExecutor([]Stage{
		countingStage("first", &runs),
		{ID: "optional", Optional: true, Run: func(ctx context.Context, st *game.State) error {
			return fmt.Errorf("image model unavailable")
		}},
		countingStage("last", &runs),
	}, nil)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	if err := e.Run(context.Background(), execState()); err != nil {
		t.Fatalf("optional stage error must not abort: %v", err)
	}
	if runCount(runs, "last") != 1 {
		t.Error("stage after a degraded optional stage did not run")
	}
}

func TestRun_FatalStageError(t *testing.T) {
	var runs []string
	boom := fmt.Errorf("boom")
	e, err := NewExecutor([]Stage{
		{ID: "broken", Run: func(ctx context.Context, st *game.State) error { return boom }},
		countingStage("after", &runs),
	}, nil)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	runErr := e.Run(context.Background(), execState())
	if !errors.Is(runErr, boom) {
		t.Fatalf("err = %v, want wrapped boom", runErr)
	}
	if len(runs) != 0 {
		t.Error("stages after a fatal error must not run")
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs []string
	e, err := NewExecutor([]Stage{
		{ID: "first", Run: func(ctx context.Context, st *game.State) error {
			runs = append(runs, "first")
			cancel()
			return nil
		}},
		countingStage("second", &runs),
	}, nil)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	if err := e.Run(ctx, execState()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if runCount(runs, "second") != 0 {
		t.Error("stage ran after cancellation")
	}
}

func TestRun_Snapshots(t *testing.T) {
	loop, setPass := worldLoop("entry", "validate")
	setPass(true)

	var runs []string
	e, err := NewExecutor([]Stage{
		countingStage("entry", &runs),
		countingStage("validate", &runs),
	}, []Loop{loop})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	s := testStore(t)
	e.SetStore(s)
	if err := e.Run(context.Background(), execState()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	names, err := s.Snapshots()
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("snapshots = %v, want 2 entries", names)
	}
	if names[0] != "01_entry.json" || names[1] != "02_validate.json" {
		t.Errorf("snapshots = %v", names)
	}
	if _, err := s.LoadState(); err != nil {
		t.Errorf("rolling state not written: %v", err)
	}
}

func TestNewExecutor_RejectsBadLoops(t *testing.T) {
	stages := []Stage{
		countingStage("a", new([]string)),
		countingStage("b", new([]string)),
	}
	verdict := func(st *game.State) (bool, []game.ValidationIssue, []string) { return true, nil, nil }
	count := func(st *game.State) int { return 0 }
	setCount := func(st *game.State, n int) {}
	max := func(st *game.State) int { return 0 }

	if _, err := NewExecutor(stages, []Loop{{Entry: "missing", Validator: "b",
		Verdict: verdict, Count: count, SetCount: setCount, Max: max}}); err == nil {
		t.Error("expected error for unknown entry stage")
	}
	if _, err := NewExecutor(stages, []Loop{{Entry: "b", Validator: "a",
		Verdict: verdict, Count: count, SetCount: setCount, Max: max}}); err == nil {
		t.Error("expected error when entry follows validator")
	}
}
