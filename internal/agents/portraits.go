package agents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caseworks/mysteryforge/internal/batch"
	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/prompt"
)

// portraitJob is one image to generate and where it lands on disk.
type portraitJob struct {
	id     string
	prompt string
	path   string
}

func styleVars(st *game.State) (style string) {
	if st.VisualStyle == nil {
		return ""
	}
	return mustJSON(st.VisualStyle)
}

func renderPortraitPrompt(st *game.State, name, ageRange, gender, role, description, costume string) (string, error) {
	return prompt.MustRender("portrait", prompt.Vars{
		"name":        name,
		"age_range":   ageRange,
		"gender":      gender,
		"role":        role,
		"description": description,
		"costume":     costume,
		"style":       styleVars(st),
	})
}

// portraitBatchOptions governs image generation concurrency and retry.
// The image model rate-limits harder than the text tiers, so the
// concurrency ceiling stays below the batch default.
var portraitBatchOptions = batch.Options{MaxConcurrent: 3}

// runPortraitBatch generates every job through the batch runner and
// writes the PNGs. Per-item failure leaves that portrait absent and is
// reported through onResult; the batch itself never fails the stage.
func runPortraitBatch(ctx context.Context, gen Generator, jobs []portraitJob, progress io.Writer, onResult func(job portraitJob, ok bool, attempts int, err error)) {
	runner := batch.New(func(ctx context.Context, job portraitJob) (string, error) {
		data, err := gen.GenerateImage(ctx, job.prompt)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(job.path, data, 0o644); err != nil {
			return "", fmt.Errorf("write portrait: %w", err)
		}
		return job.path, nil
	}, portraitBatchOptions)
	runner.SetProgress(progress)

	results := runner.Run(ctx, jobs)
	for i, res := range results {
		onResult(jobs[i], res.OK, res.Attempts, res.Err)
	}
}

// Portraits generates one portrait per suspect. Disabled image generation
// and dry-run are explicit no-ops so the stage keeps its pipeline slot.
func Portraits(ctx context.Context, gen Generator, st *game.State, imagesDir string, progress io.Writer) error {
	if !st.Config.GenerateImages || st.Config.DryRun {
		return nil
	}
	characters, err := st.RequireCharacters()
	if err != nil {
		return fmt.Errorf("portraits: %w", err)
	}
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return fmt.Errorf("portraits: %w", err)
	}

	jobs := make([]portraitJob, 0, len(characters))
	for _, c := range characters {
		p, err := renderPortraitPrompt(st, c.Name, c.AgeRange, c.Gender, c.Role, c.PublicDescription, c.CostumeSuggestion)
		if err != nil {
			return fmt.Errorf("portraits: %w", err)
		}
		jobs = append(jobs, portraitJob{
			id:     c.ID,
			prompt: p,
			path:   filepath.Join(imagesDir, c.ID+".png"),
		})
	}

	runPortraitBatch(ctx, gen, jobs, progress, func(job portraitJob, ok bool, attempts int, err error) {
		if !ok {
			if progress != nil {
				fmt.Fprintf(progress, "portrait for %s failed after %d attempts: %v\n", job.id, attempts, err)
			}
			return
		}
		if c := st.CharacterByID(job.id); c != nil {
			c.ImagePath = job.path
		}
	})
	return ctx.Err()
}
