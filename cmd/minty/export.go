package minty

import (
	"fmt"
	"time"

	"github.com/kerbaras/minty/pkg/app/components"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/services"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [chapter-id]",
	Short: "Export a chapter to EPUB",
	Long: `Download every page of a chapter, downscale wide pages and write them
into a single EPUB, in reading order.

Examples:
  minty export 7
  minty export 7 -o ~/Books`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		controller := openController(cmd)
		defer controller.Close()

		chapter, err := controller.Source().GetChapter(cmd.Context(), data.ID(args[0]))
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to load chapter: %w", err))
		}
		if chapter == nil {
			cobra.CheckErr(fmt.Errorf("chapter %s not found", args[0]))
		}

		exporter := controller.ExportTo(output)
		if exporter != controller.Exporter() {
			defer exporter.Close()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Exporting %s (%d pages)\n", chapter.Title, len(chapter.Images))

		// Listen for progress
		done := make(chan struct{})
		go func() {
			defer close(done)
			for progress := range exporter.GetProgressChannel() {
				if progress.ChapterID != chapter.ID {
					continue
				}
				switch progress.Status {
				case services.StatusDownloading, services.StatusProcessing:
					if progress.TotalPages > 0 {
						fmt.Fprintf(out, "\r%s %d/%d", components.SimpleProgress(progress.CurrentPage, progress.TotalPages, 30), progress.CurrentPage, progress.TotalPages)
					}
				default:
					fmt.Fprintln(out)
					return
				}
			}
		}()

		path, err := exporter.ExportChapter(cmd.Context(), chapter)
		// The final event may have been dropped by a full channel
		select {
		case <-done:
		case <-time.After(time.Second):
			fmt.Fprintln(out)
		}
		if err != nil {
			cobra.CheckErr(fmt.Errorf("export failed: %w", err))
		}
		fmt.Fprintf(out, "EPUB created: %s\n", path)
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output directory (defaults to the configured export directory)")

	rootCmd.AddCommand(exportCmd)
}
