// ppt-translator extracts text from PowerPoint files, translates it through
// an LLM provider, and rebuilds the deck with the original formatting.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tristan-mcinnis/ppt-translator/internal/config"
	"github.com/tristan-mcinnis/ppt-translator/internal/logger"
	"github.com/tristan-mcinnis/ppt-translator/internal/ppt"
	"github.com/tristan-mcinnis/ppt-translator/internal/provider"
	"github.com/tristan-mcinnis/ppt-translator/internal/translation"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

type cliFlags struct {
	configPath       string
	providerName     string
	model            string
	sourceLang       string
	targetLang       string
	maxChunkSize     int
	maxWorkers       int
	keepIntermediate bool
	logFile          string
	verbose          bool
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	root := &cobra.Command{
		Use:   "ppt-translator <file-or-directory>",
		Short: "Translate PowerPoint presentations while preserving formatting",
		Long: `ppt-translator runs a PowerPoint file, or every PowerPoint file under a
directory, through a three-pass pipeline: extract text and formatting into
an XML document, translate the text through an LLM provider, and rebuild a
translated copy of the deck. The intermediate XML files are written next to
each input and can be hand-corrected and reassembled.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &flags)
		},
	}

	root.Flags().StringVar(&flags.configPath, "config", "", "config file path")
	root.Flags().StringVarP(&flags.providerName, "provider", "p", "", "translation provider ("+strings.Join(provider.List(), ", ")+")")
	root.Flags().StringVarP(&flags.model, "model", "m", "", "override the provider's default model")
	root.Flags().StringVarP(&flags.sourceLang, "source-lang", "s", "", "source language code")
	root.Flags().StringVarP(&flags.targetLang, "target-lang", "t", "", "target language code")
	root.Flags().IntVar(&flags.maxChunkSize, "max-chunk-size", 0, "maximum characters per translation request")
	root.Flags().IntVar(&flags.maxWorkers, "max-workers", 0, "maximum slides processed concurrently")
	root.Flags().BoolVar(&flags.keepIntermediate, "keep-intermediate", false, "keep per-slide checkpoint files")
	root.Flags().StringVar(&flags.logFile, "log-file", "", "log file path")
	root.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newProvidersCmd())
	return root
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List available translation providers",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range provider.List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func run(cmd *cobra.Command, path string, flags *cliFlags) error {
	logCfg := logger.DefaultConfig()
	if flags.logFile != "" {
		logCfg.LogFilePath = flags.logFile
	}
	if flags.verbose {
		logCfg.Level = logger.LevelDebug
	}
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	manager, err := config.NewManager(flags.configPath)
	if err != nil {
		return err
	}
	if err := manager.Load(); err != nil {
		return err
	}
	cfg := manager.Get()

	if cmd.Flags().Changed("provider") {
		cfg.Provider = flags.providerName
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = flags.model
	}
	if cmd.Flags().Changed("source-lang") {
		cfg.SourceLang = flags.sourceLang
	}
	if cmd.Flags().Changed("target-lang") {
		cfg.TargetLang = flags.targetLang
	}
	if cmd.Flags().Changed("max-chunk-size") {
		cfg.MaxChunkSize = flags.maxChunkSize
	}
	if cmd.Flags().Changed("max-workers") {
		cfg.MaxWorkers = flags.maxWorkers
	}
	if flags.keepIntermediate {
		cfg.KeepIntermediate = true
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	prov, err := provider.New(cfg.Provider, provider.Options{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return err
	}
	service := translation.NewService(prov, cfg.MaxChunkSize)

	files, err := ppt.IterPresentationFiles(ppt.CleanPath(path))
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no presentation files found at %s", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := ppt.ProcessOptions{
		Translator: service,
		SourceLang: cfg.SourceLang,
		TargetLang: cfg.TargetLang,
		MaxWorkers: cfg.MaxWorkers,
		Apply: ppt.ApplyOptions{
			FontScale:      cfg.FontScale,
			TableFontScale: cfg.TableFontScale,
			FallbackFont:   cfg.FallbackFont,
		},
		KeepIntermediate: cfg.KeepIntermediate,
	}

	logger.Info("starting translation",
		logger.String("provider", prov.Name()),
		logger.String("sourceLang", cfg.SourceLang),
		logger.String("targetLang", cfg.TargetLang),
		logger.Int("files", len(files)))

	failed := 0
	for _, file := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result, err := ppt.ProcessFile(ctx, file, opts)
		if err != nil {
			failed++
			logger.Error("file failed", err, logger.String("file", file))
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", file, result.OutputPath)
		if !result.Report.OK() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d properties could not be applied (see log)\n", len(result.Report.Issues))
		}
	}

	logger.Info("translation finished",
		logger.Int("files", len(files)),
		logger.Int("failed", failed),
		logger.Int("cachedTranslations", service.CacheSize()))

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
