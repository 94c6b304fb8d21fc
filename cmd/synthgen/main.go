package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rowjay/insights-synth/internal/app"
	"github.com/rowjay/insights-synth/internal/catalog"
	"github.com/rowjay/insights-synth/internal/config"
	"github.com/rowjay/insights-synth/internal/errs"
	"github.com/rowjay/insights-synth/internal/logging"
	"github.com/rowjay/insights-synth/internal/notify"
	"github.com/rowjay/insights-synth/internal/storage"
	"github.com/rowjay/insights-synth/internal/version"
)

type rootFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

type generateFlags struct {
	Pattern       string
	Output        string
	GeneratorPath string
	OutputDir     string
	Compression   string
	ListPatterns  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error [%s]: %v\n", errs.KindOf(err), err)
		return 1
	}
	return 0
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	root := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "synthgen",
		Short:         "Generate synthetic Insights archives with native PCP data",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&root.ConfigPath, "config", "", "Path to config file (yaml/toml/json)")
	rootCmd.PersistentFlags().StringVar(&root.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&root.LogFormat, "log-format", "", "Log format (json, console)")

	rootCmd.AddCommand(newGenerateCmd(root, stdout))
	rootCmd.AddCommand(newPatternsCmd(stdout))
	rootCmd.AddCommand(newVersionCmd(stdout))
	return rootCmd
}

func newGenerateCmd(root *rootFlags, stdout io.Writer) *cobra.Command {
	flags := &generateFlags{}
	generate := &cobra.Command{
		Use:   "generate <input_archive>",
		Short: "Replace the PCP data in an Insights archive with a synthetic load pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ListPatterns {
				return printPatterns(stdout)
			}
			if len(args) == 0 {
				return errs.Usage("input archive is required when not using --list-patterns")
			}
			if _, err := catalog.LookupProfile(flags.Pattern); err != nil {
				return errs.Usage("%w", err)
			}
			if _, err := os.Stat(args[0]); err != nil {
				return errs.Usage("input archive not found: %s", args[0])
			}

			cfg, err := loadConfig(root, flags)
			if err != nil {
				return err
			}
			logger := logging.Configure(cfg.Global.LogLevel, cfg.Global.LogFormat)
			store, err := storage.New(cfg.Output)
			if err != nil {
				return err
			}
			appSvc := app.New(cfg, store, logger, notify.FromConfig(cfg.Notifications))

			res, err := appSvc.Generate(cmd.Context(), app.GenerateOptions{
				Input:   args[0],
				Pattern: flags.Pattern,
				Output:  flags.Output,
			})
			if err != nil {
				return err
			}
			printSummary(stdout, res)
			return nil
		},
	}
	generate.Flags().StringVar(&flags.Pattern, "pattern", app.DefaultPattern, "System state pattern ("+strings.Join(catalog.ProfileNames(), ", ")+")")
	generate.Flags().StringVar(&flags.Output, "output", "", "Output archive name (without extension)")
	generate.Flags().StringVar(&flags.GeneratorPath, "generator-path", "", "Path to the synthetic-pcp-generator binary")
	generate.Flags().StringVar(&flags.OutputDir, "output-dir", "", "Directory for the output archive (local backend)")
	generate.Flags().StringVar(&flags.Compression, "compression", "", "Output compression (gzip, zstd)")
	generate.Flags().BoolVar(&flags.ListPatterns, "list-patterns", false, "List all available patterns and exit")
	return generate
}

func newPatternsCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List available system state patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printPatterns(stdout)
		},
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "synthgen %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

func printPatterns(w io.Writer) error {
	profiles, err := catalog.Profiles()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Available system state patterns:")
	for _, p := range profiles {
		fmt.Fprintf(w, "  %-15s - %s\n", p.Name, p.Description)
		fmt.Fprintf(w, "  %-15s   CPU: ~%g%%, Memory: ~%g%%\n", "", p.CPUUsagePercent, p.MemoryUsagePercent)
		fmt.Fprintf(w, "  %-15s   Detection: %s, %s\n", "", p.Detection, p.Recommendation)
		fmt.Fprintln(w)
	}
	return nil
}

func printSummary(w io.Writer, res *app.GenerateResult) {
	p := res.Profile
	fmt.Fprintf(w, "Generated synthetic archive: %s\n", res.Object.Location)
	fmt.Fprintf(w, "System state: %s - %s\n", p.Name, p.Description)
	fmt.Fprintln(w, "Synthetic metrics:")
	fmt.Fprintf(w, "  - CPU utilization: ~%g%%\n", p.CPUUsagePercent)
	fmt.Fprintf(w, "  - Memory utilization: ~%g%%\n", p.MemoryUsagePercent)
	fmt.Fprintf(w, "  - Expected detection: %s\n", p.Detection)
	fmt.Fprintf(w, "  - Recommendation: %s\n", p.Recommendation)
	if res.ProvenanceInjected {
		fmt.Fprintln(w, "Cloud provenance: injected")
	} else {
		fmt.Fprintln(w, "Cloud provenance: already present")
	}
}

func loadConfig(root *rootFlags, flags *generateFlags) (*config.Config, error) {
	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, root, flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, root *rootFlags, flags *generateFlags) {
	if root.LogLevel != "" {
		cfg.Global.LogLevel = root.LogLevel
	}
	if root.LogFormat != "" {
		cfg.Global.LogFormat = root.LogFormat
	}
	if flags.GeneratorPath != "" {
		cfg.Generator.Path = flags.GeneratorPath
	}
	if flags.OutputDir != "" {
		cfg.Output.Dir = flags.OutputDir
	}
	if flags.Compression != "" {
		cfg.Output.Compression = strings.ToLower(flags.Compression)
	}
}
