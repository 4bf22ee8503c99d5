package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"livequiz-service/internal/app"
	"livequiz-service/internal/config"
)

// NewReconcileCmd rebuilds participant totals for a quiz from the answer
// ledger. Run it after a partial commit was logged or any time totals are in
// doubt; the ledger is the source of truth.
func NewReconcileCmd(configPath *string) *cobra.Command {
	var quizID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild participant totals from the answer ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if quizID == "" {
				return fmt.Errorf("--quiz is required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" && cfg.Redis.Addr == "" {
				return fmt.Errorf("reconcile needs a postgres or redis backend configured")
			}

			s, err := buildStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.close()

			reconciler := app.NewReconciler(s.ledger, s.scores, s.players)
			fixed, err := reconciler.ReconcileQuiz(cmd.Context(), quizID)
			if err != nil {
				return err
			}
			log.Printf("reconciled quiz %s: %d totals corrected", quizID, fixed)
			return nil
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz ID to reconcile")
	return cmd
}
