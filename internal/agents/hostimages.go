package agents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/caseworks/mysteryforge/internal/game"
)

// HostImages generates the victim and detective portraits with the same
// degradation rules as the suspect portraits.
func HostImages(ctx context.Context, gen Generator, st *game.State, imagesDir string, progress io.Writer) error {
	if !st.Config.GenerateImages || st.Config.DryRun {
		return nil
	}
	crime, err := st.RequireCrime()
	if err != nil {
		return fmt.Errorf("host images: %w", err)
	}
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return fmt.Errorf("host images: %w", err)
	}

	var jobs []portraitJob

	victim := crime.Victim
	vp, err := renderPortraitPrompt(st, victim.Name, strconv.Itoa(victim.Age), victim.Gender,
		victim.RoleInSetting, victim.PublicPersona, victim.CostumeSuggestion)
	if err != nil {
		return fmt.Errorf("host images: %w", err)
	}
	jobs = append(jobs, portraitJob{
		id:     "victim",
		prompt: vp,
		path:   filepath.Join(imagesDir, "victim.png"),
	})

	if st.HostGuide != nil && st.HostGuide.Detective != nil {
		d := st.HostGuide.Detective
		dp, err := renderPortraitPrompt(st, d.CharacterName, "40-55", "", "detective",
			d.PublicDescription, d.CostumeSuggestion)
		if err != nil {
			return fmt.Errorf("host images: %w", err)
		}
		jobs = append(jobs, portraitJob{
			id:     "detective",
			prompt: dp,
			path:   filepath.Join(imagesDir, "detective.png"),
		})
	}

	runPortraitBatch(ctx, gen, jobs, progress, func(job portraitJob, ok bool, attempts int, err error) {
		if !ok {
			if progress != nil {
				fmt.Fprintf(progress, "%s portrait failed after %d attempts: %v\n", job.id, attempts, err)
			}
			return
		}
		switch job.id {
		case "victim":
			st.Crime.Victim.ImagePath = job.path
		case "detective":
			st.HostGuide.Detective.ImagePath = job.path
		}
	})
	return ctx.Err()
}
