package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "creator-analytics",
		Short: "Revenue analytics service for creator bookings",
		RunE:  run,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the creator-analytics service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	backfillCmd = &cobra.Command{
		Use:   "backfill",
		Short: "Aggregate completed orders missing from the analytics tables",
		RunE:  runBackfill,
	}

	cfgFile   string
	creatorId string
	version   string
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	backfillCmd.Flags().StringVar(&creatorId, "creator", "", "creator id to backfill; all creators with unprocessed orders when empty")
	rootCmd.AddCommand(versionCmd, backfillCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Default().Error("can't start the service", slog.String("err", err.Error()))
		os.Exit(-1)
	}
}
