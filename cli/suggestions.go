package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/scheduler"
)

const commandTimeout = 30 * time.Minute

func newSuggestionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Run the monthly suggestion jobs by hand",
	}
	cmd.AddCommand(newGenerateCommand(), newCleanupCommand())
	return cmd
}

func newGenerateCommand() *cobra.Command {
	var month, mlaID string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate suggestion reports for a month",
		Long:  `Generate the suggestion report of every MLA (or one MLA with --mla) for a month. Existing reports are left unchanged.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if month == "" {
				month = a.svc.Suggestions.CurrentMonth()
			}

			if mlaID != "" {
				id, err := primitive.ObjectIDFromHex(mlaID)
				if err != nil {
					return fmt.Errorf("invalid --mla %q: %w", mlaID, err)
				}
				report, err := a.svc.Suggestions.GenerateForMLA(ctx, id, month)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report for %s in %s has %d suggestions\n", mlaID, month, len(report.Suggestions))
				return nil
			}

			summary, err := a.svc.Suggestions.GenerateForAll(ctx, month)
			if err != nil {
				return err
			}
			a.logger.Info("suggestions generated", zap.String("month", month), zap.Int("generated", summary.Generated), zap.Int("failed", summary.Failed))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d generated, %d failed\n", summary.Month, summary.Generated, summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&mlaID, "mla", "", "Only generate the report of this MLA")
	return cmd
}

func newCleanupCommand() *cobra.Command {
	var before string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Archive suggestion reports older than a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if before == "" {
				before = scheduler.CutoffMonth(time.Now().In(a.location), scheduler.RetentionMonths)
			}

			updated, err := a.svc.Suggestions.MarkOldInactive(ctx, before)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %d reports before %s\n", updated, before)
			return nil
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "Archive reports for months strictly before YYYY-MM (default: 12 months ago)")
	return cmd
}
