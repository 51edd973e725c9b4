package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dev-nick421/immich-swipe/internal/adapters/kv/diskv"
	"github.com/dev-nick421/immich-swipe/internal/app/swipe"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

func newStatsCommand(v *viper.Viper) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print how many assets were kept and deleted",
		Example: `
immich-swipe stats
immich-swipe stats --reset
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := swipe.LoadConfig(v)
			if err != nil {
				return err
			}
			store, err := diskv.New(cfg.StorePath)
			if err != nil {
				return err
			}
			stats := services.NewStatsService(store, cfg.ServerURL, cfg.User)
			if err := stats.Load(); err != nil {
				return err
			}
			if reset {
				if err := stats.Reset(); err != nil {
					return err
				}
			}
			printStats(cfg, stats.Snapshot())
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "set both counters back to zero")
	return cmd
}

func printStats(cfg swipe.Config, s services.Stats) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("server"), cfg.ServerURL)
	tbl.AddRow(bold.Sprint("user"), cfg.User)
	tbl.AddRow(bold.Sprint("kept"), color.GreenString("%d", s.Kept))
	tbl.AddRow(bold.Sprint("deleted"), color.RedString("%d", s.Deleted))
	tbl.AddRow(bold.Sprint("reviewed"), s.Reviewed())

	_, _ = fmt.Fprintln(color.Output, tbl)
}
