package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/logging"
	"github.com/codebar-ag/docs.clouddocs.ch/internal/processor"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Report what optimizing would change without modifying files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root := cfg.Root
		if len(args) == 1 {
			root = args[0]
		}

		reports, err := processor.ScanAll(root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(reports) == 0 {
			fmt.Fprintf(out, "No image files found in %s directory.\n", root)
			return nil
		}
		for i, report := range reports {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printScanReport(out, report)
		}
		return nil
	},
}

func printScanReport(out io.Writer, report processor.ScanReport) {
	fmt.Fprintf(out, "%s\n", scanFileStyle.Render(report.Path))
	if report.Err != nil {
		fmt.Fprintf(out, "  %s %s\n", scanBulletStyle.Render("-"), scanErrStyle.Render(report.Err.Error()))
		return
	}

	format := report.Kind.String()
	if report.Detected != report.Kind {
		format += " (content: " + report.Detected.String() + ")"
	}
	fmt.Fprintf(out, "  %s %s\n", scanBulletStyle.Render("-"), scanValueStyle.Render(fmt.Sprintf(
		"%s %dx%d %s, %s", format, report.Width, report.Height, report.Mode, units.BytesSize(float64(report.Size)),
	)))
	if report.Flattened {
		fmt.Fprintf(out, "  %s %s\n", scanBulletStyle.Render("-"), scanDimStyle.Render("transparency flattened onto white"))
	}

	for _, detail := range report.Details {
		if len(detail.Values) == 0 {
			continue
		}
		fmt.Fprintf(out, "  %s\n", scanCategoryStyle.Render(detail.Category+":"))
		for _, value := range detail.Values {
			fmt.Fprintf(out, "    %s %s\n", scanBulletStyle.Render("-"), scanValueStyle.Render(value))
		}
	}
}

var (
	scanFileStyle     = lipgloss.NewStyle().Bold(true).Foreground(logging.ColorAccent)
	scanCategoryStyle = lipgloss.NewStyle().Foreground(logging.ColorAccentAlt)
	scanValueStyle    = lipgloss.NewStyle().Foreground(logging.ColorInk)
	scanDimStyle      = lipgloss.NewStyle().Foreground(logging.ColorDim)
	scanBulletStyle   = lipgloss.NewStyle().Foreground(logging.ColorDim)
	scanErrStyle      = lipgloss.NewStyle().Foreground(logging.ColorError)
)

func init() {
	rootCmd.AddCommand(scanCmd)
}
