package main

import (
	"github.com/spf13/cobra"

	"github.com/seenimoa/fairvalue/internal/report"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history TICKER",
	Short: "Show the yearly revenue, net income and free cash flow used for valuation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.Output.Format
		}
		format, err := report.ParseFormat(output)
		if err != nil {
			return err
		}
		years, _ := cmd.Flags().GetInt("years")

		src, err := newSource()
		if err != nil {
			return err
		}
		ticker := utils.NormalizeTicker(args[0])
		records, err := src.FetchHistory(cmd.Context(), ticker, max(years, 1))
		if err != nil {
			return err
		}
		return report.WriteHistory(cmd.OutOrStdout(), format, ticker, records)
	},
}

func init() {
	historyCmd.Flags().StringP("output", "o", "", "output format: text, json or yaml (default from config)")
	historyCmd.Flags().Int("years", 2, "minimum years of aligned statements required")
}
