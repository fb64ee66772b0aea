package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seenimoa/valuescreen/internal/scoring"
	"github.com/seenimoa/valuescreen/internal/valuation"
	"github.com/seenimoa/valuescreen/pkg/utils"
)

// addValuationFlags registers the DCF assumption flags. Unset flags keep
// the configured defaults.
func addValuationFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("growth", 0, "initial growth rate as a decimal (default from config)")
	cmd.Flags().Float64("terminal", 0, "terminal growth rate as a decimal (default from config)")
	cmd.Flags().Float64("discount", 0, "discount rate as a decimal (default from config)")
	cmd.Flags().Int("years", 0, "forecast horizon in years (default from config)")
	cmd.Flags().Int("split", 0, "last year of initial growth, 0 for single stage (default from config)")
}

// valuationParams merges explicitly set flags over the configured defaults.
func valuationParams(cmd *cobra.Command) valuation.Parameters {
	p := cfg.Valuation.Parameters()
	f := cmd.Flags()
	if f.Changed("growth") {
		p.GrowthRateInitial, _ = f.GetFloat64("growth")
	}
	if f.Changed("terminal") {
		p.GrowthRateTerminal, _ = f.GetFloat64("terminal")
	}
	if f.Changed("discount") {
		p.DiscountRate, _ = f.GetFloat64("discount")
	}
	if f.Changed("years") {
		p.ForecastYears, _ = f.GetInt("years")
	}
	if f.Changed("split") {
		p.SplitYear, _ = f.GetInt("split")
	}
	return p
}

// --- Value Command (offline DCF) ---

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Run the DCF model on a cash flow history you supply",
	Long: `Compute intrinsic value from free cash flows given oldest first.
No network access is needed.

Examples:
  valuescreen value --fcf 100,110,105
  valuescreen value --fcf 9.5e9,11e9,9.7e9 --shares 4.3e9 --price 62.5
  valuescreen value --fcf 100,110,105 --split 0 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fcf, _ := cmd.Flags().GetFloat64Slice("fcf")
		params := valuationParams(cmd)

		res, err := valuation.ComputeIntrinsicValue(valuation.SeriesOf(fcf...), params)
		if err != nil {
			return err
		}

		value := res.IntrinsicValue
		var perShare *float64
		if cmd.Flags().Changed("shares") {
			shares, _ := cmd.Flags().GetFloat64("shares")
			if shares <= 0 {
				return &valuation.InvalidParameterError{Field: "shares", Value: shares, Reason: "must be positive"}
			}
			value /= shares
			if math.IsInf(value, 0) {
				return &valuation.InvalidParameterError{Field: "shares", Value: shares, Reason: "per-share value overflows"}
			}
			perShare = &value
		}

		var margin *valuation.Margin
		if cmd.Flags().Changed("price") {
			price, _ := cmd.Flags().GetFloat64("price")
			m := valuation.MarginOf(value, &price)
			margin = &m
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeValueJSON(out, params, res, perShare, margin)
		}
		printValue(out, params, res, perShare, margin)
		return nil
	},
}

func init() {
	addValuationFlags(valueCmd)
	valueCmd.Flags().Float64Slice("fcf", nil, "free cash flows, oldest first (at least 3)")
	valueCmd.Flags().Float64("shares", 0, "shares outstanding, for a per-share value")
	valueCmd.Flags().Float64("price", 0, "market price to compute a margin of safety against")
	valueCmd.Flags().Bool("json", false, "print JSON instead of a table")
	_ = valueCmd.MarkFlagRequired("fcf")
}

func writeValueJSON(w io.Writer, p valuation.Parameters, res valuation.Result, perShare *float64, margin *valuation.Margin) error {
	payload := struct {
		Parameters             valuation.Parameters `json:"parameters"`
		Result                 valuation.Result     `json:"result"`
		IntrinsicValuePerShare *float64             `json:"intrinsic_value_per_share,omitempty"`
		Margin                 *valuation.Margin    `json:"margin_of_safety,omitempty"`
		MarginError            string               `json:"margin_error,omitempty"`
	}{Parameters: p, Result: res, IntrinsicValuePerShare: perShare, Margin: margin}
	if margin != nil && margin.Err != nil {
		payload.MarginError = margin.Err.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func printValue(w io.Writer, p valuation.Parameters, res valuation.Result, perShare *float64, margin *valuation.Margin) {
	stages := "single stage"
	if p.SplitYear > 0 {
		stages = fmt.Sprintf("split after year %d", p.SplitYear)
	}
	fmt.Fprintf(w, "DCF: %s initial, %s terminal, %s discount, %d years (%s)\n\n",
		utils.FormatPct(p.GrowthRateInitial), utils.FormatPct(p.GrowthRateTerminal),
		utils.FormatPct(p.DiscountRate), p.ForecastYears, stages)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tGrowth\tCash flow\tPresent value\t")
	for _, y := range res.Schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", y.Year, utils.FormatPct(y.Growth),
			utils.FormatMoney(y.CashFlow, ""), utils.FormatMoney(y.Discounted, ""))
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Base cash flow:        %s\n", utils.FormatMoney(res.BaseCashFlow, ""))
	fmt.Fprintf(w, "PV of forecast:        %s\n", utils.FormatMoney(res.PresentValueOfForecast, ""))
	fmt.Fprintf(w, "Terminal value:        %s\n", utils.FormatMoney(res.TerminalValue, ""))
	fmt.Fprintf(w, "PV of terminal value:  %s\n", utils.FormatMoney(res.PresentValueOfTerminal, ""))
	fmt.Fprintf(w, "Intrinsic value:       %s\n", utils.FormatMoney(res.IntrinsicValue, ""))
	if perShare != nil {
		fmt.Fprintf(w, "Per share:             %s\n", utils.FormatMoney(*perShare, ""))
	}
	if margin != nil {
		if margin.Defined {
			fmt.Fprintf(w, "Margin of safety:      %s\n", utils.FormatPct(margin.Value))
		} else {
			fmt.Fprintf(w, "Margin of safety:      undefined (%v)\n", margin.Err)
		}
	}
}

// --- Margin Command ---

var marginCmd = &cobra.Command{
	Use:   "margin",
	Short: "Compute the margin of safety of a price against an intrinsic value",
	Long: `Margin of safety is (intrinsic value - price) / price.

Example:
  valuescreen margin --intrinsic 120 --price 80`,
	RunE: func(cmd *cobra.Command, args []string) error {
		intrinsic, _ := cmd.Flags().GetFloat64("intrinsic")
		price, _ := cmd.Flags().GetFloat64("price")

		m, err := valuation.ComputeMarginOfSafety(intrinsic, price)
		if err != nil {
			return err
		}

		verdict := "overvalued"
		if m > 0 {
			verdict = "undervalued"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Margin of safety: %s (%s)\n", utils.FormatPct(m), verdict)
		return nil
	},
}

func init() {
	marginCmd.Flags().Float64("intrinsic", 0, "intrinsic value")
	marginCmd.Flags().Float64("price", 0, "market price")
	_ = marginCmd.MarkFlagRequired("intrinsic")
	_ = marginCmd.MarkFlagRequired("price")
}

// --- Rank Command ---

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank an investment from its scores and margin of safety",
	Long: `Combine a fundamental score (0-4), a moat score (0-5) and an optional
margin of safety into a rating: Excellent, Good, Average or Avoid.

Example:
  valuescreen rank --fundamental 4 --moat 2 --margin 0.35`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fund, _ := cmd.Flags().GetInt("fundamental")
		moat, _ := cmd.Flags().GetInt("moat")
		if fund < 0 || fund > scoring.ChecklistMax {
			return fmt.Errorf("--fundamental must be between 0 and %d, got %d", scoring.ChecklistMax, fund)
		}
		if moat < 0 || moat > scoring.MoatMax {
			return fmt.Errorf("--moat must be between 0 and %d, got %d", scoring.MoatMax, moat)
		}

		margin := valuation.Margin{}
		if cmd.Flags().Changed("margin") {
			v, _ := cmd.Flags().GetFloat64("margin")
			if margin = valuation.MarginValue(v); !margin.Defined {
				return fmt.Errorf("--margin: %w", margin.Err)
			}
		}

		rating := valuation.RankInvestment(fund, moat, margin)
		fmt.Fprintf(cmd.OutOrStdout(), "★ RATING: %s (score %d/%d)\n", rating, fund+moat, scoring.ChecklistMax+scoring.MoatMax)
		return nil
	},
}

func init() {
	rankCmd.Flags().Int("fundamental", 0, "fundamental checklist score (0-4)")
	rankCmd.Flags().Int("moat", 0, "moat score (0-5)")
	rankCmd.Flags().Float64("margin", 0, "margin of safety as a decimal; omit if unknown")
	_ = rankCmd.MarkFlagRequired("fundamental")
	_ = rankCmd.MarkFlagRequired("moat")
}
