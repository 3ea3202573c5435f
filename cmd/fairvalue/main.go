// fairvalue estimates the intrinsic value per share of US-listed stocks with
// a discounted cash flow model fed by Financial Modeling Prep statements.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seenimoa/fairvalue/internal/config"
	"github.com/seenimoa/fairvalue/internal/provider"
	"github.com/seenimoa/fairvalue/internal/providers"
	"github.com/seenimoa/fairvalue/pkg/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root PersistentPreRunE.
var (
	cfg *config.Config
	log = logger.Nop()
)

// errAllFailed makes the process exit non-zero after the report was printed.
var errAllFailed = errors.New("no ticker could be valued")

func main() {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errAllFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fairvalue",
	Short: "fairvalue — discounted cash flow fair value calculator",
	Long: `fairvalue fetches annual income and cash flow statements from
Financial Modeling Prep, derives growth, margin and free cash flow rates
from history, projects them forward and discounts the result to a fair
value per share, with and without a margin of safety.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if l, _ := cmd.Flags().GetString("log-level"); l != "" {
			level = l
		}
		log = logger.New(logger.Config{Level: level, Format: cfg.Logging.Format, Output: cmd.ErrOrStderr()})
		if cfg.File != "" {
			log.WithField("file", cfg.File).Debug("config loaded")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("ping", false, "send one request per provider to verify connectivity and keys")
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fairvalue %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, providers and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		v := cfg.Valuation
		configFile := cfg.File
		if configFile == "" {
			configFile = "(none, using defaults)"
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  fairvalue — Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Config file:   %s\n", configFile)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Data provider:")
		fmt.Fprintf(out, "    Base URL:      %s\n", cfg.FMP.BaseURL)
		fmt.Fprintf(out, "    Timeout:       %s\n", cfg.FMP.Timeout())
		fmt.Fprintf(out, "    Rate limit:    %d req/s\n", cfg.FMP.RateLimit)
		fmt.Fprintf(out, "    Retries:       %d\n", cfg.FMP.MaxRetries)
		fmt.Fprintf(out, "    Cache TTL:     %s\n", cfg.FMP.CacheTTL())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Valuation defaults:")
		fmt.Fprintf(out, "    Minimum years:     %d\n", v.MinimumYears)
		fmt.Fprintf(out, "    Years to project:  %d\n", v.YearsToProject)
		fmt.Fprintf(out, "    Required return:   %g %%\n", v.ReturnPercentage)
		fmt.Fprintf(out, "    Perpetual growth:  %g %%\n", v.PerpetualGrowthRate)
		fmt.Fprintf(out, "    Margin of safety:  %g %%\n", v.MarginOfSafety)
		fmt.Fprintf(out, "    Risk:              %s\n", v.Risk)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
				if k.EnvVar != "" {
					status = fmt.Sprintf("set (%s %s: %s)", k.Source, k.EnvVar, k.Masked)
				}
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}
		fmt.Fprintln(out)

		reg := provider.NewRegistry()
		if err := providers.RegisterAllTo(reg, cfg.FMP, log); err != nil {
			return err
		}
		ping, _ := cmd.Flags().GetBool("ping")
		var pingErrs []error

		fmt.Fprintln(out, "  Providers:")
		infos := reg.List()
		if len(infos) == 0 {
			fmt.Fprintln(out, "    (none registered)")
		}
		for _, info := range infos {
			fmt.Fprintf(out, "    %-10s %s\n", info.Name, info.Description)
			if !ping {
				continue
			}
			p, err := reg.Get(info.Name)
			if err == nil {
				err = p.Ping(cmd.Context())
			}
			if err != nil {
				pingErrs = append(pingErrs, err)
				fmt.Fprintf(out, "    %-10s ping failed: %v\n", "", err)
			} else {
				fmt.Fprintf(out, "    %-10s ping ok\n", "")
			}
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Models:")
		coverage := reg.ModelCoverage()
		for _, m := range provider.AllModels() {
			served := "(no provider)"
			if names := coverage[m]; len(names) > 0 {
				served = strings.Join(names, ", ")
			}
			fmt.Fprintf(out, "    %-22s %-18s %s\n", provider.ModelCategory(m), m, served)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return errors.Join(pingErrs...)
	},
}
