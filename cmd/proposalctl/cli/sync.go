package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (e *env) syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Inspect and flush the sync queue",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "List proposals waiting for upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			pending := s.store.PendingSync()
			if len(pending) == 0 {
				fmt.Fprintln(e.out(), "sync queue empty")
				return nil
			}
			for _, id := range pending {
				fmt.Fprintln(e.out(), id)
			}
			return nil
		},
	}

	flush := &cobra.Command{
		Use:   "flush",
		Short: "Hand every queued proposal to the sync worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.open(ctx)
			if err != nil {
				return err
			}
			pending := s.store.PendingSync()
			if len(pending) == 0 {
				fmt.Fprintln(e.out(), "sync queue empty")
				return nil
			}
			client, err := e.opts.NewEnqueuer(e.settings.redisAddr)
			if err != nil {
				return fmt.Errorf("connect queue: %w", err)
			}
			defer func() { _ = client.Close() }()

			var enqueued, duplicates int
			for _, id := range pending {
				queued, err := client.EnqueueProposalSync(ctx, id)
				if err != nil {
					// ids already handed over stay dequeued; the rest are retried next flush
					return fmt.Errorf("enqueue %s: %w", id, err)
				}
				if queued {
					enqueued++
				} else {
					duplicates++
				}
				s.store.DequeueSync(id)
			}
			fmt.Fprintf(e.out(), "enqueued %d proposal(s), %d already queued\n", enqueued, duplicates)
			return nil
		},
	}

	cmd.AddCommand(status, flush)
	return cmd
}
