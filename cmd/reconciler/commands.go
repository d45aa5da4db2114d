package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"scoremint/domain"
	"scoremint/internal/reconcile"
	"scoremint/internal/service/scheduler"
	"scoremint/internal/service/validation"

	"github.com/spf13/cobra"
)

type DebtReconciler interface {
	Reconcile(ctx context.Context, debts []reconcile.Debt) reconcile.Report
}

// Backend opens the stores a command needs.
type Backend struct {
	Reconciler func(ctx context.Context) (DebtReconciler, func(), error)
	Nonces     func(ctx context.Context) (domain.NonceStore, error)
}

type RootOptions struct {
	Timeout time.Duration
}

func NewRootCommand(backend Backend) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reconciler",
		Short: "Offline maintenance for the scoremint backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Timeout <= 0 {
				return fmt.Errorf("invalid timeout %s: must be positive", opts.Timeout)
			}
			return nil
		},
	}

	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "overall deadline for the command")

	cmd.AddCommand(NewReconcileCommand(opts, backend))
	cmd.AddCommand(NewSweepNoncesCommand(opts, backend))
	return cmd
}

func NewReconcileCommand(rootOpts *RootOptions, backend Backend) *cobra.Command {
	var fromLog string

	cmd := &cobra.Command{
		Use:   "reconcile [score...]",
		Short: "Backfill minted scores missing from the database",
		Long: `Reads the on-chain owner of each score and records the mint locally
when the owner maps to a known user. Scores come from the arguments or from
the debt entries of a chain log. Nothing is written to the chain.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			debts, err := collectDebts(args, fromLog)
			if err != nil {
				return err
			}
			if len(debts) == 0 {
				return fmt.Errorf("no scores to reconcile: pass scores or --from-log")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.Timeout)
			defer cancel()

			reconciler, closeFn, err := backend.Reconciler(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			report := reconciler.Reconcile(ctx, debts)
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				return err
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d score(s) could not be reconciled", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromLog, "from-log", "", "chain log file to read debt entries from")
	return cmd
}

func NewSweepNoncesCommand(rootOpts *RootOptions, backend Backend) *cobra.Command {
	return &cobra.Command{
		Use:          "sweep-nonces",
		Short:        "Delete expired sign-in nonces",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.Timeout)
			defer cancel()

			store, err := backend.Nonces(ctx)
			if err != nil {
				return err
			}
			removed, err := scheduler.SweepNonces(ctx, store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Swept %d expired nonce(s)\n", removed)
			return nil
		},
	}
}

func collectDebts(args []string, fromLog string) ([]reconcile.Debt, error) {
	var debts []reconcile.Debt
	for _, arg := range args {
		score, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || !validation.ValidateScore(score) {
			return nil, fmt.Errorf("invalid score %q", arg)
		}
		debts = append(debts, reconcile.Debt{Score: score})
	}
	if fromLog != "" {
		f, err := os.Open(fromLog)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		logged, err := reconcile.ParseDebtLog(f)
		if err != nil {
			return nil, err
		}
		debts = append(debts, logged...)
	}
	return debts, nil
}
