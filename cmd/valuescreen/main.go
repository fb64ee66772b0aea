// valuescreen: fundamental checklist, moat tally and DCF margin of safety
// for a single stock.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/valuescreen/api"
	"github.com/seenimoa/valuescreen/internal/config"
	"github.com/seenimoa/valuescreen/internal/datasource"
	"github.com/seenimoa/valuescreen/internal/infra"
	"github.com/seenimoa/valuescreen/internal/report"
	"github.com/seenimoa/valuescreen/internal/scoring"
	"github.com/seenimoa/valuescreen/internal/screen"
	"github.com/seenimoa/valuescreen/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command's PersistentPreRunE.
var (
	cfg    *config.Config
	logger *log.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "valuescreen",
	Short: "valuescreen: value-investing screen for a single stock",
	Long: `valuescreen scores a company against a fundamental checklist and
a qualitative moat tally, values it with a two-stage discounted cash flow
model, and ranks it by its margin of safety.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; anything else is a real error.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

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

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger = cfg.Logging.NewLogger(os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(marginCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "valuescreen %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Screen Command ---

var screenCmd = &cobra.Command{
	Use:   "screen [ticker]",
	Short: "Fetch a company's data and run the full value screen",
	Long: `Fetch fundamentals, cash flow history and headlines for a ticker,
then run the fundamental checklist, moat tally, DCF valuation and ranking.

Examples:
  valuescreen screen KO --moat brand,network
  valuescreen screen AAPL --growth 0.08 --discount 0.09 --format json
  valuescreen screen MSFT --format html --output msft.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, err := utils.ParseTicker(args[0])
		if err != nil {
			return err
		}

		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		moatFlag, _ := cmd.Flags().GetString("moat")
		moat, err := scoring.ParseMoatFactors(moatFlag)
		if err != nil {
			return err
		}

		agg, err := newAggregator(cfg, logger)
		if err != nil {
			return err
		}
		svc := screen.NewService(agg, logger)

		in := screen.Inputs{Parameters: valuationParams(cmd), Moat: moat}
		rep, err := svc.Run(cmd.Context(), ticker, in)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
			defer fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
		}
		return report.Render(out, rep, format)
	},
}

func init() {
	addValuationFlags(screenCmd)
	screenCmd.Flags().String("moat", "", "comma-separated moat factors (brand, network, switching, cost, intangible)")
	screenCmd.Flags().StringP("format", "f", "text", "output format: text, json or html")
	screenCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.API.Host = host
		}
		if cmd.Flags().Changed("port") {
			cfg.API.Port, _ = cmd.Flags().GetInt("port")
		}

		agg, err := newAggregator(cfg, logger)
		if err != nil {
			return err
		}

		api.Version = version
		srv := api.NewServer(cfg, screen.NewService(agg, logger), logger)
		if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
			srv.SetServeUI(false)
		}
		return srv.ListenAndServe(cmd.Context(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default from config)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	serveCmd.Flags().Bool("no-ui", false, "do not serve the embedded dashboard")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  valuescreen: System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintln(out)

		v := cfg.Valuation
		fmt.Fprintln(out, "  Valuation defaults:")
		fmt.Fprintf(out, "    Growth:        %s initial, %s terminal\n", utils.FormatPct(v.GrowthInitial), utils.FormatPct(v.GrowthTerminal))
		fmt.Fprintf(out, "    Discount rate: %s\n", utils.FormatPct(v.DiscountRate))
		fmt.Fprintf(out, "    Horizon:       %d years (split at %d)\n", v.ForecastYears, v.SplitYear)
		fmt.Fprintln(out)

		p := cfg.Provider
		fallback := "none"
		if p.HasFallback() {
			fallback = p.Fallback
		}
		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Provider:      %s (fallback: %s)\n", p.Primary, fallback)
		fmt.Fprintf(out, "    Cache TTL:     %s\n", p.CacheDuration())
		fmt.Fprintf(out, "    Headlines:     %d\n", p.NewsLimit)
		fmt.Fprintf(out, "    API Server:    %s\n", cfg.API.Addr())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			if k.Required && !k.IsSet {
				status += " (required)"
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

// newAggregator wires the configured fundamentals providers and the
// headline feed behind one aggregator sharing an HTTP client.
func newAggregator(cfg *config.Config, logger *log.Logger) (*datasource.Aggregator, error) {
	p := cfg.Provider
	opts := []datasource.Option{
		datasource.WithHTTPClient(infra.NewHTTPClient(p.TimeoutDuration())),
		datasource.WithRateLimit(p.RateLimit),
		datasource.WithCacheTTL(p.CacheDuration()),
		datasource.WithLogger(logger),
	}

	primary, err := datasource.NewProvider(p.Primary, p.FMPKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}

	aggCfg := datasource.AggregatorConfig{
		Primary:   primary,
		NewsLimit: p.NewsLimit,
		Logger:    logger,
	}
	if p.HasFallback() {
		if aggCfg.Fallback, err = datasource.NewProvider(p.Fallback, p.FMPKey, opts...); err != nil {
			return nil, fmt.Errorf("fallback provider: %w", err)
		}
	}
	if p.NewsLimit > 0 {
		aggCfg.News = datasource.NewNews(opts...)
	}
	return datasource.NewAggregator(aggCfg), nil
}
