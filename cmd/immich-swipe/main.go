package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/dev-nick421/immich-swipe/internal/app/swipe"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	v := swipe.NewViper()

	cmd := &cobra.Command{
		Use:           "immich-swipe",
		Short:         "Review your photo library one asset at a time: keep it or trash it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("server-url", "", "photo library server URL (IMMICH_SWIPE_SERVER_URL)")
	flags.String("api-key", "", "API key (IMMICH_SWIPE_API_KEY)")
	flags.String("user", "", "identity used to namespace settings and stats")
	flags.String("store-path", "", "directory for persisted settings and stats")
	_ = v.BindPFlag("server_url", flags.Lookup("server-url"))
	_ = v.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = v.BindPFlag("user", flags.Lookup("user"))
	_ = v.BindPFlag("store_path", flags.Lookup("store-path"))

	cmd.AddCommand(
		newServeCommand(v),
		newReviewCommand(v),
		newStatsCommand(v),
	)
	return cmd
}
