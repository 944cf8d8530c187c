package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/logger"
)

var (
	skipConfirm bool
	cleanAll    bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove log files, and with --all the stored token",
	Long: `Removes every parley log file from /tmp, including demo server logs.

With --all the stored bearer token is removed as well, which is the same
as 'parley logout'. Settings in ~/.parley/config.json are kept.
It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Also remove the stored token")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	return runCleanWithReader(cmd.InOrStdin(), cmd.OutOrStdout())
}

// runCleanWithReader allows injecting input and output for testing
func runCleanWithReader(input io.Reader, w io.Writer) error {
	logs, err := logger.LogFiles()
	if err != nil {
		return err
	}
	hasToken := cleanAll && config.HasStoredToken()

	if len(logs) == 0 && !hasToken {
		fmt.Fprintln(w, "Nothing to clean.")
		return nil
	}

	// Print summary of what will be cleaned
	fmt.Fprintln(w, "This will clean:")
	if len(logs) > 0 {
		fmt.Fprintf(w, "  - %d log file(s) in /tmp\n", len(logs))
	}
	if hasToken {
		fmt.Fprintln(w, "  - The stored token in ~/.parley")
	}

	// Confirm unless --yes flag is set
	if !skipConfirm {
		if !confirm(input, w, "Continue?") {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	logsCleared, err := logger.ClearLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error clearing logs: %v\n", err)
	}

	var tokenCleared bool
	if hasToken {
		if tokenCleared, err = config.ClearToken(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error removing token: %v\n", err)
		}
	}

	// Print results
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Cleaned:")
	if logsCleared > 0 {
		fmt.Fprintf(w, "  - %d log file(s) removed\n", logsCleared)
	}
	if tokenCleared {
		fmt.Fprintln(w, "  - Stored token removed")
	}

	return nil
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, w io.Writer, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
