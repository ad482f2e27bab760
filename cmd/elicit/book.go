package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/internal/booking"
	"github.com/ggoodman/elicit/replay"
)

type bookFlags struct {
	party     int
	when      string
	requestID string
	record    bool
}

func newBookCmd(a *app) *cobra.Command {
	var flags bookFlags

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Confirm a table booking on this terminal",
		Example: `  elicit book --party 2 --when "June 21st at 5pm"
  elicit book --id booking-42 --record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBook(cmd, flags)
		},
	}

	cmd.Flags().IntVar(&flags.party, "party", 2, "Number of people")
	cmd.Flags().StringVar(&flags.when, "when", "June 21st at 5pm", "Date and time of the booking")
	cmd.Flags().StringVar(&flags.requestID, "id", "", "Request id; required with --record")
	cmd.Flags().BoolVar(&flags.record, "record", false, "Record the answer and replay it for the same --id")

	return cmd
}

func (a *app) runBook(cmd *cobra.Command, flags bookFlags) error {
	ctx := cmd.Context()
	if flags.party < 1 {
		return fmt.Errorf("--party must be at least 1")
	}

	var cb elicitation.Callback = a.console(cmd)
	if flags.record {
		if flags.requestID == "" {
			return fmt.Errorf("--record requires --id")
		}
		if a.cfg.Replay.RedisAddr == "" {
			a.log.Warn("book.record.memory", "detail", "without REDIS_ADDR recorded answers only last for this process")
		}
		store, err := a.store(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		cb, err = replay.New(cb, store,
			replay.WithLogger(a.log),
			replay.WithPrefix(a.cfg.Replay.Prefix),
			replay.WithTTL(a.cfg.Replay.TTL),
		)
		if err != nil {
			return err
		}
	}

	r, err := a.requester(cb)
	if err != nil {
		return err
	}
	var opts []elicitation.ElicitOption
	if flags.requestID != "" {
		opts = append(opts, elicitation.WithRequestID(flags.requestID))
	}
	res, err := r.Elicit(ctx, booking.Source, booking.Message(booking.Reservation{Party: flags.party, When: flags.when}), booking.Schema(), opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), booking.Outcome(res))
	return nil
}
