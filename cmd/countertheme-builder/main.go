package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/provide-io/countertheme/internal/cli"
	"github.com/provide-io/countertheme/internal/output"
	"github.com/provide-io/countertheme/pkg"
	"github.com/provide-io/countertheme/pkg/config"
	"github.com/provide-io/countertheme/pkg/logging"
	"github.com/provide-io/countertheme/pkg/theme/pipeline"
	"github.com/provide-io/countertheme/pkg/utils/permissions"
)

const binaryName = "countertheme-builder"

var (
	cfgFile     string
	inputPath   string
	previewPath string
	outputPath  string
	versionFlag bool
	rootCmd     *cobra.Command
	v           *viper.Viper
)

func init() {
	v = config.New()

	rootCmd = &cobra.Command{
		Use:   binaryName,
		Short: "Package an image into an encounter counter theme",
		Long: `Package a GIF, PNG, JPEG or WEBP image into an encounter counter theme archive.

Examples:
  # Animated background with the default 300x250 size
  countertheme-builder -i shiny.gif --name "Shiny Hunt"

  # Custom size, separate minimised preview, output directory
  countertheme-builder -i bg.gif --preview mini.png --width 240 --height 180 -o themes/`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          buildTheme,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&inputPath, "input", "i", "", "Path to the background image (required)")
	flags.StringVar(&previewPath, "preview", "", "Path to an image for the minimised preview (defaults to the first frame)")
	flags.StringVarP(&outputPath, "output", "o", "", "Output file or directory (defaults to <name>.zip)")
	flags.StringVar(&cfgFile, "config", "", "Config file path (e.g. countertheme.yaml)")
	flags.String("name", "", "Theme name")
	flags.Int("width", 0, "Frame width in pixels")
	flags.Int("height", 0, "Frame height in pixels")
	flags.Int("preview-width", 0, "Preview width in pixels")
	flags.Int("preview-height", 0, "Preview height in pixels")
	flags.String("footer-template", "", "Descriptor footer: file path, http(s) URL, or \"embedded\"")
	flags.String("info-template", "", "info.xml template: file path, http(s) URL, or \"embedded\"")
	flags.String("compression", "", "ZIP compression (deflate, store, bzip2)")
	flags.Int("workers", 0, "Concurrent resample workers (0 = one per CPU)")
	flags.Duration("timeout", 0, "Abort the run after this long")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	mustBindPFlag(config.KeyThemeName, "name")
	mustBindPFlag(config.KeyThemeWidth, "width")
	mustBindPFlag(config.KeyThemeHeight, "height")
	mustBindPFlag(config.KeyThemePreviewWidth, "preview-width")
	mustBindPFlag(config.KeyThemePreviewHeight, "preview-height")
	mustBindPFlag(config.KeyFooterTemplate, "footer-template")
	mustBindPFlag(config.KeyInfoTemplate, "info-template")
	mustBindPFlag(config.KeyCompression, "compression")
	mustBindPFlag(config.KeyResampleWorkers, "workers")
	mustBindPFlag(config.KeyTimeout, "timeout")
	mustBindPFlag(config.KeyLogLevel, "log-level")
}

func mustBindPFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		cli.PrintVersion(os.Stdout, binaryName)
		os.Exit(cli.ExitOK)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("❌ %v", err))
		os.Exit(cli.ExitCode(err))
	}
}

func buildTheme(cmd *cobra.Command, args []string) error {
	if versionFlag {
		cli.PrintVersion(cmd.OutOrStdout(), binaryName)
		return nil
	}
	if inputPath == "" {
		return fmt.Errorf("required flag \"input\" not set")
	}

	used, err := config.ReadFile(v, cfgFile)
	if err != nil {
		return err
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if level == "" {
		level = logging.GetLogLevel()
	}
	logger := logging.NewLogger(binaryName, level, cmd.ErrOrStderr())
	logger.Info("🎞️ countertheme builder starting", "version", cli.Version)
	if used != "" {
		logger.Debug("📄 Using config file", "path", used)
	}

	opts, err := pkg.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.Pipeline.Status = statusPrinter(cmd.ErrOrStderr())

	primary, err := pkg.LoadAsset(inputPath)
	if err != nil {
		return err
	}
	logger.Debug("🖼️ Loaded input", "path", inputPath, "mime", primary.MimeType, "size", len(primary.Bytes))

	if previewPath != "" {
		preview, err := pkg.LoadAsset(previewPath)
		if err != nil {
			return err
		}
		opts.Request.PreviewSource = &preview
	}

	start := time.Now()
	result, err := pkg.BuildTheme(cmd.Context(), primary, opts, logger)
	if err != nil {
		return err
	}

	dest, err := output.ResolvePath(outputPath, opts.Request.WithDefaults().ThemeName)
	if err != nil {
		return err
	}
	if err := output.Write(dest, result.Archive, permissions.DefaultOutputPerms, logger); err != nil {
		return err
	}

	reportDone(cmd.OutOrStdout(), dest, result, time.Since(start), logger)
	return nil
}

func statusPrinter(w io.Writer) pipeline.StatusFunc {
	stage := color.New(color.FgCyan, color.Bold).SprintfFunc()
	done := color.New(color.FgGreen, color.Bold).SprintfFunc()
	failed := color.New(color.FgRed, color.Bold).SprintfFunc()

	return func(state pipeline.State, message string) {
		label := fmt.Sprintf("%-10s", state)
		switch state {
		case pipeline.StateReady:
			label = done("%s", label)
		case pipeline.StateFailed:
			label = failed("%s", label)
		default:
			label = stage("%s", label)
		}
		fmt.Fprintf(w, "%s %s\n", label, message)
	}
}

func reportDone(w io.Writer, dest string, result *pipeline.Result, elapsed time.Duration, logger hclog.Logger) {
	fmt.Fprintf(w, "%s %s (%d frames, %d bytes, %s)\n",
		color.GreenString("✅ Wrote"),
		dest,
		result.FrameCount,
		len(result.Archive),
		elapsed.Round(time.Millisecond))
	logger.Debug("📦 Archive entries", "entries", result.Entries)
}
