package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"autotex/internal/texlog"
)

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	var submissionID int64
	var statusFlag string
	var rulesPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "annotate [logfile]",
		Short: "Annotate an autotex compilation log as HTML",
		Long: "Annotate reads an autotex compilation transcript from a file or stdin,\n" +
			"classifies each line, and writes the annotated HTML report.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := texlog.Status(strings.ToLower(strings.TrimSpace(statusFlag)))
			if status != texlog.StatusSucceeded && status != texlog.StatusFailed {
				return fmt.Errorf("invalid status %q (expected succeeded or failed)", statusFlag)
			}

			annotator, err := buildAnnotator(ctx, rulesPath)
			if err != nil {
				return err
			}

			raw, err := readTranscript(cmd, args)
			if err != nil {
				return err
			}

			annotated := annotator.Annotate(raw, submissionID, status)

			if trimmed := strings.TrimSpace(outputPath); trimmed != "" {
				if err := os.WriteFile(trimmed, []byte(annotated), 0o644); err != nil {
					return fmt.Errorf("write output %q: %w", trimmed, err)
				}
				return nil
			}
			if _, err := io.WriteString(cmd.OutOrStdout(), annotated); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&submissionID, "submission", "s", 0, "Submission identifier used in error summary links")
	cmd.Flags().StringVar(&statusFlag, "status", "succeeded", "Compilation outcome (succeeded or failed)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Extra classification rules file (YAML)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the annotated log to a file instead of stdout")
	return cmd
}

// buildAnnotator assembles the annotator with any extra rules from the flag
// or the configured rules path.
func buildAnnotator(ctx *commandContext, rulesPath string) (*texlog.Annotator, error) {
	path := strings.TrimSpace(rulesPath)
	if path == "" {
		if cfg, err := ctx.ensureConfig(); err == nil && cfg != nil {
			path = strings.TrimSpace(cfg.Annotator.RulesPath)
		}
	}

	var extra []texlog.Rule
	if path != "" {
		rules, err := texlog.LoadRules(path)
		if err != nil {
			return nil, fmt.Errorf("load rules %q: %w", path, err)
		}
		extra = rules
	}
	return texlog.New(extra...)
}

func readTranscript(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read log %q: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
