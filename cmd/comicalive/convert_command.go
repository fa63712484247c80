package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/zachdrouin/ComicAlive/internal/config"
	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/pipeline"
	"github.com/zachdrouin/ComicAlive/internal/preflight"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var styleFlag string
	var seedFlag int64
	var noAudio bool
	var noOCR bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "convert <archive>",
		Short: "Convert a comic archive into a motion video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(styleFlag) != "" {
				cfg.Animation.Style = styleFlag
			}
			if seedFlag != 0 {
				cfg.Animation.Seed = seedFlag
			}
			if noAudio {
				cfg.Audio.Enabled = false
			}
			if noOCR {
				cfg.OCR.Enabled = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !skipPreflight {
				results := preflight.RunAll(runCtx, cfg)
				if !preflight.Passed(results) {
					printPreflight(cmd, results)
					return fmt.Errorf("preflight checks failed")
				}
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				OutputPaths: []string{
					filepath.Join(cfg.Paths.LogDir, "comicalive.log"),
				},
			})
			if err != nil {
				return err
			}

			coordinator, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}

			outPath, err := resolveOutputPath(cfg, args[0], outputFlag)
			if err != nil {
				return err
			}

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				reportProgress(cmd, coordinator.Events())
			}()

			runErr := coordinator.Run(runCtx, args[0], outPath)
			wg.Wait()
			if runErr != nil {
				return runErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output video path (default: output dir + archive name)")
	cmd.Flags().StringVar(&styleFlag, "style", "", "Animation style: pan_scan, ken_burns, or mixed")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "Fix the animation random seed for reproducible output")
	cmd.Flags().BoolVar(&noAudio, "no-audio", false, "Skip narration and sound effects")
	cmd.Flags().BoolVar(&noOCR, "no-ocr", false, "Skip speech bubble text extraction")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before the run")
	return cmd
}

func resolveOutputPath(cfg *config.Config, sourcePath, flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return config.ExpandPath(flagValue)
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(cfg.Paths.OutputDir, base+".mp4"), nil
}

// reportProgress drains the coordinator's event stream. On a terminal the
// current stage is rewritten in place; otherwise only stage completions are
// printed so logs stay readable.
func reportProgress(cmd *cobra.Command, events <-chan pipeline.Progress) {
	out := cmd.OutOrStdout()
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	for event := range events {
		if tty {
			fmt.Fprintf(out, "\r\033[K%-9s %3.0f%%  %s", event.Stage, event.Percent, event.Message)
			if event.Percent >= 100 {
				fmt.Fprintln(out)
			}
			continue
		}
		if event.Percent >= 100 {
			fmt.Fprintf(out, "%s done\n", event.Stage)
		}
	}
}

func printPreflight(cmd *cobra.Command, results []preflight.Result) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Name, passFail(r.Passed), r.Detail})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows))
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "FAIL"
}
