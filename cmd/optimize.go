package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/logging"
	"github.com/codebar-ag/docs.clouddocs.ch/internal/processor"
	"github.com/codebar-ag/docs.clouddocs.ch/internal/tui"
)

var showProgress bool

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opt := processor.NewOptimizer(cfg)
	if !showProgress {
		_, err := processor.Run(ctx, cfg.Root, opt, logging.New(cmd.OutOrStdout()), nil)
		return err
	}

	updates := make(chan processor.ProgressUpdate, 64)
	program := tea.NewProgram(tui.NewModel(updates),
		tea.WithOutput(cmd.ErrOrStderr()),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	uiDone := make(chan struct{})
	go func() {
		_, _ = program.Run()
		close(uiDone)
	}()

	runUpdates := make(chan processor.ProgressUpdate)
	forwarded := make(chan struct{})
	go func() {
		forwardUpdates(runUpdates, updates, uiDone)
		close(forwarded)
	}()

	log := logging.New(progressLines(program.Println, uiDone, cmd.ErrOrStderr()))
	summary, err := processor.Run(ctx, cfg.Root, opt, log, runUpdates)

	close(runUpdates)
	<-forwarded
	<-uiDone
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(tui.SummaryRows(summary)))
	return nil
}

// forwardUpdates relays progress to the view until in is closed, then
// closes out. Updates are dropped once the view has exited.
func forwardUpdates(in <-chan processor.ProgressUpdate, out chan<- processor.ProgressUpdate, uiDone <-chan struct{}) {
	defer close(out)
	for u := range in {
		select {
		case out <- u:
		case <-uiDone:
		}
	}
}

// progressLines prints log lines above the progress view while it runs
// and straight to fallback after it has exited.
func progressLines(printAbove func(...any), uiDone <-chan struct{}, fallback io.Writer) logging.LineWriter {
	return func(line string) {
		select {
		case <-uiDone:
			fmt.Fprintln(fallback, line)
		default:
			printAbove(line)
		}
	}
}

func init() {
	rootCmd.Flags().BoolVarP(&showProgress, "progress", "p", false, "show a progress bar on stderr")
}
