package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nkhandelwal/rupeewise/internal/cli"
	"github.com/nkhandelwal/rupeewise/internal/extract"
	"github.com/nkhandelwal/rupeewise/internal/model"
)

func smsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sms <bank> <message>",
		Short: "Classify a bank SMS alert",
		Long: `Parse a debit/credit SMS alert from a supported bank (hdfc, sbi) and
classify the transaction it describes.

Example:
  rupeewise sms hdfc "HDFC Bank: Rs.450.00 debited from A/c XX1234 on 15-Jan-24 to VPA ZOMATO@ICICI"`,
		Args: cobra.MinimumNArgs(2),
		RunE: runSMS,
	}

	cmd.Flags().Bool("dry-run", false, "classify without saving")

	return cmd
}

func runSMS(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	bank := args[0]
	message := strings.Join(args[1:], " ")

	txn, err := extract.ParseSMS(bank, message)
	if err != nil {
		return fmt.Errorf("failed to parse SMS: %w", err)
	}

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	eng, orch, err := buildEngine(ctx, db)
	if err != nil {
		return err
	}
	if orch != nil {
		defer orch.Close()
	}

	result, err := eng.Classify(ctx, txn)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	fmt.Println(cli.RenderResult(txn, result))

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		return nil
	}
	return saveResults(ctx, db, []model.Transaction{txn}, []model.ClassificationResult{result})
}
