package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nkhandelwal/rupeewise/internal/cli"
	"github.com/nkhandelwal/rupeewise/internal/extract"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <statement.txt>",
		Short: "Extract and classify transactions from statement text",
		Long: `Parse a bank or wallet statement text file, extract its transactions,
classify them, and save the results. Structural parsers handle known layouts;
unreadable statements fall back to the LLM extraction pipeline.

Examples:
  rupeewise ingest hdfc-jan.txt
  rupeewise ingest phonepe-statement.txt --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().Bool("dry-run", false, "extract and classify without saving")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read statement: %w", err)
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

	extractor := extract.NewExtractor(orchestratorOrNil(orch), extractConfig(), slog.Default())
	txns, err := extractor.Extract(ctx, string(raw))
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if len(txns) == 0 {
		return fmt.Errorf("no transactions found in %s", args[0])
	}

	slog.Info("Extracted transactions", "count", len(txns), "file", args[0])

	results, err := eng.ClassifyBatch(ctx, txns)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	fmt.Println(cli.RenderSummary(txns, results))

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		slog.Info("Dry run, nothing saved")
		return nil
	}
	return saveResults(ctx, db, txns, results)
}
