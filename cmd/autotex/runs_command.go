package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"autotex/internal/texlog"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "runs [logfile]",
		Short: "List the compiler runs recorded in a transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readTranscript(cmd, args)
			if err != nil {
				return err
			}

			runs := texlog.Runs(raw)
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No compiler runs found in transcript")
				return nil
			}

			if plain || !stdoutIsTerminal() {
				for i, run := range runs {
					fmt.Fprintf(out, "%d\t%s\t%s\n", i+1, run.Engine, run.Ordinal)
				}
				return nil
			}

			title := cases.Title(language.Und)
			rows := make([][]string, 0, len(runs))
			for i, run := range runs {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					title.String(run.Engine),
					run.Ordinal,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Engine", "Pass"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Force plain tab-separated output")
	return cmd
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
