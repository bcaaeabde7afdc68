package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nkhandelwal/rupeewise/internal/cli"
	"github.com/nkhandelwal/rupeewise/internal/corrections"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/registry"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Record a category correction",
		Long: `Record a correction for a misclassified transaction. The correction is
kept permanently and becomes a learned merchant rule, so the same merchant
classifies correctly next time.

Example:
  rupeewise correct --description "POS BIG BAZAAR MUMBAI" --category Groceries`,
		RunE: runCorrect,
	}

	cmd.Flags().StringP("description", "d", "", "transaction description being corrected (required)")
	cmd.Flags().StringP("category", "c", "", "correct category (required)")
	cmd.Flags().StringP("subcategory", "s", "", "correct subcategory")
	cmd.Flags().String("merchant", "", "merchant name for the learned rule")
	cmd.Flags().String("transaction-id", "", "transaction the correction applies to")
	cmd.Flags().String("old-category", "", "category being replaced")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runCorrect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	description, _ := cmd.Flags().GetString("description")
	category, _ := cmd.Flags().GetString("category")
	subcategory, _ := cmd.Flags().GetString("subcategory")
	merchant, _ := cmd.Flags().GetString("merchant")
	transactionID, _ := cmd.Flags().GetString("transaction-id")
	oldCategory, _ := cmd.Flags().GetString("old-category")

	// The statistical classifier is rebuilt from seed plus correction
	// history on every run, so no live learner is needed here.
	reg := registry.New(db, slog.Default())
	store := corrections.New(db, reg, nil, slog.Default())

	correction := &model.Correction{
		TransactionID:  transactionID,
		Description:    description,
		MerchantName:   merchant,
		OldCategory:    oldCategory,
		NewCategory:    category,
		NewSubcategory: subcategory,
	}
	if err := store.RecordAndApply(ctx, correction); err != nil {
		return fmt.Errorf("failed to record correction: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Correction recorded: %q → %s", description, category)))
	return nil
}
