package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/civicprep/civicprep/internal/logger"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/syncqueue"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload queued test results and sync review cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		skipCards, _ := cmd.Flags().GetBool("results-only")

		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		log := logger.Setup(cfg.Log, "text")
		ctx := cmd.Context()

		st, err := openLocal(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		rs, err := requireRemote(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer rs.Close()

		queue := syncqueue.New(st.PendingRepo(), rs, syncqueue.WithLogger(log))
		deck := spacedrep.NewDeck(st.CardRepo(), spacedrep.NewFSRS(), log)

		var (
			results syncqueue.SyncResult
			cards   syncqueue.CardSyncResult
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			results, err = queue.Flush(gctx, func(p syncqueue.Progress) {
				if p.Total > 0 {
					fmt.Printf("\rResults: %d/%d", p.Current, p.Total)
				}
			})
			return err
		})
		if !skipCards {
			g.Go(func() error {
				var err error
				cards, err = syncqueue.SyncCards(gctx, deck, rs, cfg.User.ID)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			fmt.Println()
			return err
		}

		if results.Synced+results.Failed > 0 {
			fmt.Println()
		}
		fmt.Printf("Results synced: %d, still queued: %d\n", results.Synced, results.Failed)
		if !skipCards {
			fmt.Printf("Review cards: %d local, %d remote, %d after merge\n", cards.Local, cards.Remote, cards.Merged)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("results-only", false, "Only upload queued results; leave review cards alone")
}
