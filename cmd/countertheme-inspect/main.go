package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/provide-io/countertheme/internal/cli"
	"github.com/provide-io/countertheme/pkg"
	"github.com/provide-io/countertheme/pkg/logging"
	"github.com/provide-io/countertheme/pkg/theme"
)

const binaryName = "countertheme-inspect"

var (
	algorithmName string
	expectedSum   string
	logLevel      string
	versionFlag   bool
	rootCmd       *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           binaryName + " <archive>",
		Short:         "Verify an encounter counter theme package",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          inspect,
	}

	rootCmd.Flags().StringVar(&algorithmName, "checksum-algorithm", "sha256", "Checksum algorithm for entries (sha256, sha512, adler32, blake2b)")
	rootCmd.Flags().StringVar(&expectedSum, "expect", "", "Expected archive checksum, e.g. sha256:<hex>")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")
}

func main() {
	// Set up panic recovery to return specific exit code
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			debug.PrintStack()
			os.Exit(cli.ExitPanic)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %v", err))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, pkg.ErrLayoutInvalid), errors.Is(err, pkg.ErrChecksumMismatch), errors.Is(err, pkg.ErrNotThemePackage):
		return cli.ExitInvalidData
	default:
		return cli.ExitCode(err)
	}
}

func inspect(cmd *cobra.Command, args []string) error {
	if versionFlag {
		cli.PrintVersion(cmd.OutOrStdout(), binaryName)
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("expected one archive path")
	}
	path := args[0]

	algorithm, err := theme.ParseChecksumAlgorithm(algorithmName)
	if err != nil {
		return err
	}

	if logLevel == "" {
		// Entry lines are logged at info; show them unless asked otherwise.
		logLevel = "info"
	}
	logger := logging.NewLogger(binaryName, logLevel, cmd.ErrOrStderr())

	if expectedSum != "" {
		if err := pkg.VerifyFileChecksum(path, expectedSum); err != nil {
			return err
		}
		logger.Info("✓ Archive checksum matches", "checksum", expectedSum)
	}

	report, err := pkg.VerifyThemeWithLogger(path, algorithm, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d frames at %dx%d, preview=%t\n",
		color.GreenString("✓ Valid theme"),
		path,
		report.FrameCount,
		report.Width,
		report.Height,
		report.HasPreview)
	return nil
}
