package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newCompileCommand(ctx *commandContext) *cobra.Command {
	compileCmd := &cobra.Command{
		Use:   "compile",
		Short: "Manage compilations through the autotex daemon",
	}

	compileCmd.AddCommand(newCompileStartCommand(ctx))
	compileCmd.AddCommand(newCompileStatusCommand(ctx))
	compileCmd.AddCommand(newCompileLogCommand(ctx))
	compileCmd.AddCommand(newCompilePreviewCommand(ctx))

	return compileCmd
}

func compileArgs(args []string) (int64, string, error) {
	var submissionID int64
	if _, err := fmt.Sscanf(args[0], "%d", &submissionID); err != nil {
		return 0, "", fmt.Errorf("invalid submission id %q", args[0])
	}
	checksum := strings.TrimSpace(args[1])
	if checksum == "" {
		return 0, "", fmt.Errorf("checksum is required")
	}
	return submissionID, checksum, nil
}

func newCompileStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start <submission-id> <checksum>",
		Short: "Request a compilation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			submissionID, checksum, err := compileArgs(args)
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			state, err := client.Compile(cmd.Context(), submissionID, checksum)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Compilation for submission %d: %s\n", submissionID, state.Status)
			return nil
		},
	}
}

func newCompileStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <submission-id> <checksum>",
		Short: "Show a compilation's state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			submissionID, checksum, err := compileArgs(args)
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			state, err := client.CompileStatus(cmd.Context(), submissionID, checksum)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", state.Status)
			if state.Reason != "" {
				fmt.Fprintf(out, "Reason: %s\n", state.Reason)
			}
			return nil
		},
	}
}

func newCompileLogCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "log <submission-id> <checksum>",
		Short: "Fetch the annotated compilation log",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			submissionID, checksum, err := compileArgs(args)
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			body, _, err := client.Log(cmd.Context(), submissionID, checksum)
			if err != nil {
				return err
			}

			if trimmed := strings.TrimSpace(outputPath); trimmed != "" {
				if err := os.WriteFile(trimmed, []byte(body), 0o644); err != nil {
					return fmt.Errorf("write output %q: %w", trimmed, err)
				}
				return nil
			}
			_, err = io.WriteString(cmd.OutOrStdout(), body)
			return err
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the annotated log to a file instead of stdout")
	return cmd
}

func newCompilePreviewCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "preview <submission-id> <checksum>",
		Short: "Download the compiled preview",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			submissionID, checksum, err := compileArgs(args)
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = fmt.Sprintf("submission-%d.pdf", submissionID)
			}
			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create output %q: %w", target, err)
			}
			defer f.Close()

			contentType, err := client.Preview(cmd.Context(), submissionID, checksum, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote preview (%s) to %s\n", contentType, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file for the preview")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running: %s\n", yesNo(status.Running))
			fmt.Fprintf(out, "Compiler configured: %s\n", yesNo(status.CompilerConfigured))
			fmt.Fprintf(out, "Lock file: %s\n", status.LockFilePath)
			if status.CacheDBPath != "" {
				fmt.Fprintf(out, "Cache: %s (%d entries)\n", status.CacheDBPath, status.CacheEntries)
			}
			return nil
		},
	}
}
