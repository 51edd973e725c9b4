package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dev-nick421/immich-swipe/internal/adapters/notify"
	"github.com/dev-nick421/immich-swipe/internal/app/swipe"
	"github.com/dev-nick421/immich-swipe/internal/core/domain"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

const reviewHelp = `k, →  keep        d, ←  delete      u  undo
v     toggle skip videos           o <random|chronological-ascending|chronological-descending>
r     reload                       q  quit`

func newReviewCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review assets interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := swipe.LoadConfig(v)
			if err != nil {
				return err
			}
			app, err := swipe.Wire(cfg, &swipe.WireOptions{
				Notifier: notify.NewConsole(color.Output),
			})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := app.SubscribeHistory(ctx); err != nil {
				return err
			}
			return runReview(ctx, app, os.Stdin, color.Output)
		},
	}
}

func runReview(ctx context.Context, app *swipe.App, in io.Reader, out io.Writer) error {
	c := app.Controller
	_, _ = fmt.Fprintln(out, reviewHelp)

	if err := c.LoadInitial(ctx); err != nil && !errors.Is(err, services.ErrAllVideos) {
		_, _ = fmt.Fprintln(out, color.RedString("%v", err))
	}
	c.Wait()
	printState(out, c.State())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "k", "keep", "\x1b[C":
			err = c.Commit(ctx, services.DirectionRight)
		case "d", "delete", "\x1b[D":
			err = c.Commit(ctx, services.DirectionLeft)
		case "u", "undo":
			err = c.Undo(ctx)
		case "v":
			err = app.Settings.SetSkipVideos(!app.Settings.SkipVideos())
		case "o":
			if len(fields) < 2 {
				_, _ = fmt.Fprintln(out, color.YellowString("usage: o <order mode>"))
				continue
			}
			if err := app.Settings.SetOrderMode(domain.OrderMode(fields[1])); err != nil {
				_, _ = fmt.Fprintln(out, color.RedString("%v", err))
				continue
			}
		case "r", "reload":
			err = c.LoadInitial(ctx)
		case "q", "quit":
			app.Queue.Process(ctx)
			return nil
		default:
			_, _ = fmt.Fprintln(out, reviewHelp)
			continue
		}
		// remote failures were already reported by the notifier or the state message
		if errors.Is(err, services.ErrNoCurrentAsset) {
			_, _ = fmt.Fprintln(out, color.YellowString("nothing to review, press r to reload"))
		}

		app.Queue.Process(ctx)
		// the state table shows the preloaded asset too
		c.Wait()
		printState(out, c.State())
	}
	return scanner.Err()
}

func printState(out io.Writer, state services.ReviewState) {
	if state.Current == nil {
		msg := state.Message
		if msg == "" {
			msg = string(state.Status)
		}
		_, _ = fmt.Fprintln(out, color.YellowString("%s", msg))
		return
	}

	a := state.Current
	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.AddRow("file", color.New(color.Bold).Sprint(a.Filename))
	tbl.AddRow("type", string(a.Type))
	if !a.TakenAt.IsZero() {
		tbl.AddRow("taken", a.TakenAt.Format("2006-01-02 15:04"))
	}
	tbl.AddRow("id", color.New(color.Faint).Sprint(a.ID))
	if state.Next != nil {
		tbl.AddRow("next", color.New(color.Faint).Sprint(state.Next.Filename))
	}
	if state.CanUndo {
		tbl.AddRow("", color.CyanString("u to undo the last delete"))
	}
	_, _ = fmt.Fprintln(out, tbl)
}
