package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nkhandelwal/rupeewise/internal/cli"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/registry"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage merchant rules",
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List merchant rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			reg := registry.New(db, slog.Default())
			rules, err := reg.All(ctx)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}

			source, _ := cmd.Flags().GetString("source")

			fmt.Println(cli.FormatTitle("Merchant Rules"))
			var shown int
			for _, rule := range rules {
				if source != "" && string(rule.Source) != source {
					continue
				}
				category := rule.Category
				if rule.Subcategory != "" {
					category += " / " + rule.Subcategory
				}
				fmt.Printf("%-30s %-40s %s\n", rule.Pattern, category,
					cli.SubtleStyle.Render(fmt.Sprintf("[%s %.2f]", rule.Source, rule.Confidence)))
				shown++
			}
			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("\n%d rules", shown)))
			return nil
		},
	}

	cmd.Flags().String("source", "", "filter by source (seed, learned)")

	return cmd
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <pattern> <category>",
		Short: "Add or update a merchant rule",
		Long: `Add a merchant rule mapping a description pattern to a category.

Example:
  rupeewise rules add "chai point" "Food & Dining" --subcategory "Cafes & Coffee"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			subcategory, _ := cmd.Flags().GetString("subcategory")
			merchant, _ := cmd.Flags().GetString("merchant")
			confidence, _ := cmd.Flags().GetFloat64("confidence")

			rule := &model.MerchantRule{
				Pattern:      strings.ToLower(strings.TrimSpace(args[0])),
				MerchantName: merchant,
				Category:     args[1],
				Subcategory:  subcategory,
				Source:       model.SourceLearned,
				Confidence:   confidence,
			}

			reg := registry.New(db, slog.Default())
			if err := reg.Upsert(ctx, rule); err != nil {
				return fmt.Errorf("failed to save rule: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Rule saved: %q → %s", rule.Pattern, rule.Category)))
			return nil
		},
	}

	cmd.Flags().String("subcategory", "", "subcategory for the rule")
	cmd.Flags().String("merchant", "", "display name of the merchant")
	cmd.Flags().Float64("confidence", 0.95, "rule confidence")

	return cmd
}
