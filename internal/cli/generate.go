package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caseworks/mysteryforge/internal/config"
	"github.com/caseworks/mysteryforge/internal/db"
	"github.com/caseworks/mysteryforge/internal/game"
	"github.com/caseworks/mysteryforge/internal/gemini"
	"github.com/caseworks/mysteryforge/internal/packaging"
	"github.com/caseworks/mysteryforge/internal/pipeline"
	"github.com/caseworks/mysteryforge/internal/render"
)

var generateFlags struct {
	configFile     string
	outputDir      string
	dryRun         bool
	generateImages bool
	keepWorkDir    bool
	debug          bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a complete party kit from a game config",
	Long: `generate runs the full pipeline: world design, cast, crime, timeline,
killer selection, validation, clues and documents, then packages the kit
under the output directory as game_<id>/ plus a zip archive.

The Gemini API key is read from GEMINI_API_KEY. With --dry-run no API
calls are made and a deterministic fixture game is produced instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func runGenerate(cmd *cobra.Command) error {
	cfg, err := loadGenerateConfig()
	if err != nil {
		return err
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		cmd.Println("Configuration errors:")
		for _, e := range errs {
			cmd.Printf("  - %s\n", e)
		}
		return fmt.Errorf("config has %d validation error(s)", len(errs))
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" && !cfg.DryRun {
		return fmt.Errorf("GEMINI_API_KEY not set (use --dry-run for an offline fixture run)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := game.NewState(cfg)
	progress := cmd.OutOrStdout()

	// The ledger is observability, not correctness: a failure to open it
	// downgrades to a warning.
	ledger := openLedger(cmd)
	if ledger != nil {
		defer ledger.Close()
		_ = ledger.StartRun(st.Meta.ID, cfg.Game.Language, cfg.Game.Theme, cfg.Game.Epoch,
			cfg.Game.Players.Total, cfg.DryRun)
	}

	store, err := pipeline.NewStore(filepath.Join(cfg.OutputDir, ".work_"+st.Meta.ShortID()))
	if err != nil {
		return err
	}

	pkg := packaging.New(cfg.Game.Language)
	pkg.SetProgress(progress)
	if pdf := render.NewPDFRenderer(); pdf.Available() {
		pkg.SetPDFRenderer(pdf)
	} else {
		fmt.Fprintln(progress, "pandoc not found, kit will be markdown-only")
	}

	gen := gemini.NewClient(apiKey)
	stages, loops := pipeline.Build(gen, store, pkg, cfg.OutputDir, progress)

	exec, err := pipeline.NewExecutor(stages, loops)
	if err != nil {
		return err
	}
	exec.SetProgress(progress)
	exec.SetStore(store)
	if ledger != nil {
		exec.SetLedger(ledger, st.Meta.ID)
	}

	runErr := exec.Run(ctx, st)
	finishRun(ledger, st, runErr)

	if !cfg.KeepWorkDir && runErr == nil {
		if err := store.Remove(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: remove work dir: %v\n", err)
		}
	} else if cfg.KeepWorkDir {
		cmd.Printf("Work dir kept at %s\n", store.Dir())
	}

	if runErr != nil {
		var vErr *pipeline.ValidationFailedError
		if errors.As(runErr, &vErr) {
			printValidationFailure(cmd, vErr)
		}
		return runErr
	}

	cmd.Printf("Party kit written to %s\n", st.Packaging.GameDir)
	cmd.Printf("Archive: %s\n", st.Packaging.ArchivePath)
	return nil
}

func loadGenerateConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if generateFlags.configFile != "" {
		cfg, err = config.Load(generateFlags.configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	cfg.OutputDir = generateFlags.outputDir
	cfg.DryRun = generateFlags.dryRun
	cfg.GenerateImages = generateFlags.generateImages
	cfg.KeepWorkDir = generateFlags.keepWorkDir
	cfg.Debug = generateFlags.debug
	return cfg, nil
}

func openLedger(cmd *cobra.Command) *db.DB {
	path, err := db.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: run ledger unavailable: %v\n", err)
		return nil
	}
	d, err := db.Open(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: run ledger unavailable: %v\n", err)
		return nil
	}
	if err := d.Migrate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: run ledger migration failed: %v\n", err)
		d.Close()
		return nil
	}
	return d
}

func finishRun(ledger *db.DB, st *game.State, runErr error) {
	if ledger == nil {
		return
	}
	switch {
	case runErr == nil:
		outputPath := ""
		if st.Packaging != nil {
			outputPath = st.Packaging.GameDir
		}
		_ = ledger.FinishRun(st.Meta.ID, "completed", outputPath, "")
	case errors.Is(runErr, context.Canceled):
		_ = ledger.FinishRun(st.Meta.ID, "cancelled", "", runErr.Error())
	default:
		_ = ledger.FinishRun(st.Meta.ID, "failed", "", runErr.Error())
	}
}

// printValidationFailure surfaces the validator's report exactly as the
// model produced it, so the host can adjust the config and retry.
func printValidationFailure(cmd *cobra.Command, vErr *pipeline.ValidationFailedError) {
	cmd.Printf("\nThe design did not pass %s after the allowed retries.\n\n", vErr.Stage)
	if len(vErr.Issues) > 0 {
		cmd.Println("Issues:")
		for _, issue := range vErr.Issues {
			cmd.Printf("  - [%s] %s\n", issue.Type, issue.Description)
		}
	}
	if len(vErr.SuggestedFixes) > 0 {
		cmd.Println("Suggested fixes:")
		for _, fix := range vErr.SuggestedFixes {
			cmd.Printf("  - %s\n", fix)
		}
	}
}

func init() {
	generateCmd.Flags().StringVarP(&generateFlags.configFile, "config", "f", "", "path to the game config file")
	generateCmd.Flags().StringVarP(&generateFlags.outputDir, "output-dir", "o", "output", "directory the kit is written into")
	generateCmd.Flags().BoolVar(&generateFlags.dryRun, "dry-run", false, "run the pipeline on deterministic fixtures, no API calls")
	generateCmd.Flags().BoolVar(&generateFlags.generateImages, "generate-images", false, "generate character and host portraits")
	generateCmd.Flags().BoolVar(&generateFlags.keepWorkDir, "keep-work-dir", false, "keep per-stage snapshots after a successful run")
	generateCmd.Flags().BoolVar(&generateFlags.debug, "debug", false, "verbose progress output")
}
