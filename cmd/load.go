package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dailyerosion/depserver/internal/load"
	"github.com/dailyerosion/depserver/internal/store"
)

var (
	loadResultsPath    string
	loadWatershedsPath string
	loadScenario       int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load results or watershed names from CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loadResultsPath == "" && loadWatershedsPath == "" {
			return eris.New("nothing to load: pass --results and/or --watersheds")
		}

		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		loader, ok := st.(store.Loader)
		if !ok {
			return eris.Errorf("store driver %s does not support bulk loading", cfg.Store.Driver)
		}

		if loadWatershedsPath != "" {
			f, err := os.Open(loadWatershedsPath)
			if err != nil {
				return eris.Wrap(err, "open watersheds file")
			}
			sheds, err := load.ParseWatersheds(f)
			f.Close() //nolint:errcheck,gosec
			if err != nil {
				return err
			}
			n, err := loader.ReplaceWatersheds(ctx, loadScenario, sheds)
			if err != nil {
				return err
			}
			zap.L().Info("watersheds replaced",
				zap.Int64("rows", n), zap.Int("scenario", loadScenario))
		}

		if loadResultsPath != "" {
			f, err := os.Open(loadResultsPath)
			if err != nil {
				return eris.Wrap(err, "open results file")
			}
			rows, err := load.ParseResults(f)
			f.Close() //nolint:errcheck,gosec
			if err != nil {
				return err
			}
			n, err := loader.LoadResults(ctx, rows)
			if err != nil {
				return err
			}
			zap.L().Info("results loaded", zap.Int64("rows", n))
		}

		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadResultsPath, "results", "", "daily results CSV to append")
	loadCmd.Flags().StringVar(&loadWatershedsPath, "watersheds", "", "huc12 name CSV to replace")
	loadCmd.Flags().IntVar(&loadScenario, "scenario", 0, "scenario for --watersheds replacement")
	rootCmd.AddCommand(loadCmd)
}
