package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zachdrouin/ComicAlive/internal/detect"
	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

// newDetectCommand inspects a single page image without running a full
// conversion, useful for tuning detection thresholds.
func newDetectCommand(ctx *commandContext) *cobra.Command {
	var showBubbles bool

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Show panels and speech bubbles found on a page image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			img, err := imaging.Load(args[0])
			if err != nil {
				return err
			}
			bounds := img.Bounds()
			pageArea := float64(bounds.Dx() * bounds.Dy())

			detector := detect.NewDetector(detect.Options{
				MinAreaRatio: cfg.Detection.MinPanelRatio,
				MaxAreaRatio: cfg.Detection.MaxPanelRatio,
				Threshold:    uint8(cfg.Detection.PanelThreshold),
			})
			finder := detect.NewBubbleFinder(detect.BubbleOptions{
				MinArea:     cfg.Detection.BubbleMinArea,
				MinSolidity: cfg.Detection.BubbleSolidity,
			})

			var rows [][]string
			for i, box := range detector.Detect(img) {
				rows = append(rows, regionRow(strconv.Itoa(i+1), "panel", box, pageArea))
				if !showBubbles {
					continue
				}
				crop := imaging.Crop(img, box)
				for j, bubble := range finder.Detect(crop) {
					// Report bubble positions in page coordinates.
					bubble.X += box.X
					bubble.Y += box.Y
					label := fmt.Sprintf("%d.%d", i+1, j+1)
					rows = append(rows, regionRow(label, "bubble", bubble, pageArea))
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No panels detected")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Kind", "Position", "Size", "Page %"}, rows, 2, 3, 4))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showBubbles, "bubbles", false, "Also detect speech bubbles inside each panel")
	return cmd
}

func regionRow(label, kind string, box imaging.Rect, pageArea float64) []string {
	return []string{
		label,
		kind,
		fmt.Sprintf("%d,%d", box.X, box.Y),
		fmt.Sprintf("%dx%d", box.W, box.H),
		fmt.Sprintf("%.1f", 100*float64(box.W*box.H)/pageArea),
	}
}
