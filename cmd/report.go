package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dailyerosion/depserver/internal/report"
	"github.com/dailyerosion/depserver/internal/store"
)

var (
	reportHUC      string
	reportDate     string
	reportDate2    string
	reportScenario int
	reportKind     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a report fragment to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		renderer, err := report.NewRenderer(cfg.Report.Locale, cfg.Report.Timezone, nil)
		if err != nil {
			return err
		}
		rp := report.NewReporter(st, renderer)

		huc := report.TruncateHUC(reportHUC)

		switch reportKind {
		case "yearly":
			return rp.Yearly(ctx, os.Stdout, huc, reportScenario)
		case "monthly":
			return rp.Monthly(ctx, os.Stdout, huc, reportScenario)
		case "summary":
			start, err := time.Parse("2006-01-02", reportDate)
			if err != nil {
				return eris.Wrap(err, "parse --date")
			}
			end := start
			if reportDate2 != "" {
				if end, err = time.Parse("2006-01-02", reportDate2); err != nil {
					return eris.Wrap(err, "parse --date2")
				}
			}

			p := report.Params{HUC12: huc, Start: start, End: end, Scenario: reportScenario}
			err = rp.Summary(ctx, os.Stdout, p)
			if errors.Is(err, store.ErrWatershedNotFound) || errors.Is(err, store.ErrWatershedAmbiguous) {
				fmt.Fprintln(os.Stderr, "No township found!")
				return nil
			}
			return err
		default:
			return eris.Errorf("unknown report kind: %s", reportKind)
		}
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportHUC, "huc12", "", "HUC12 (or HUC8) code")
	reportCmd.Flags().StringVar(&reportDate, "date", "", "start date YYYY-MM-DD (summary only)")
	reportCmd.Flags().StringVar(&reportDate2, "date2", "", "optional end date YYYY-MM-DD")
	reportCmd.Flags().IntVar(&reportScenario, "scenario", 0, "model scenario")
	reportCmd.Flags().StringVar(&reportKind, "kind", "summary", "report kind: summary, yearly, or monthly")
	_ = reportCmd.MarkFlagRequired("huc12")
	rootCmd.AddCommand(reportCmd)
}
