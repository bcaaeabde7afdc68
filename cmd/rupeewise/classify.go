package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nkhandelwal/rupeewise/internal/cli"
	"github.com/nkhandelwal/rupeewise/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Categorize transactions",
		Long: `Categorize transactions: a single one given on the command line, or a
batch from a JSON or CSV file.

Examples:
  rupeewise classify --description "UPI-ZOMATO ORDER" --amount 450
  rupeewise classify --input january.csv
  rupeewise classify --input january.json --dry-run`,
		RunE: runClassify,
	}

	cmd.Flags().StringP("description", "d", "", "transaction description to classify")
	cmd.Flags().Float64P("amount", "a", 0, "signed amount (positive = debit, negative = credit)")
	cmd.Flags().String("date", "", "transaction date (YYYY-MM-DD, default today)")
	cmd.Flags().StringP("input", "i", "", "JSON or CSV file with transactions to classify")
	cmd.Flags().Bool("dry-run", false, "classify without saving results")

	_ = viper.BindPFlag("classification.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	description, _ := cmd.Flags().GetString("description")
	input, _ := cmd.Flags().GetString("input")
	if description == "" && input == "" {
		return fmt.Errorf("either --description or --input is required")
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

	if input != "" {
		return classifyBatch(ctx, cmd, db, eng, input)
	}

	amount, _ := cmd.Flags().GetFloat64("amount")
	dateStr, _ := cmd.Flags().GetString("date")
	date := time.Now()
	if dateStr != "" {
		if date, err = time.Parse("2006-01-02", dateStr); err != nil {
			return fmt.Errorf("invalid date (use YYYY-MM-DD): %w", err)
		}
	}

	txn := model.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Amount:      amount,
		Currency:    "INR",
	}

	result, err := eng.Classify(ctx, txn)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	fmt.Println(cli.RenderResult(txn, result))

	if !viper.GetBool("classification.dry_run") {
		if err := saveResults(ctx, db, []model.Transaction{txn}, []model.ClassificationResult{result}); err != nil {
			return err
		}
	}
	return nil
}

func classifyBatch(ctx context.Context, cmd *cobra.Command, db storageSaver, eng classifier, input string) error {
	txns, err := loadTransactions(input)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		return fmt.Errorf("no transactions found in %s", input)
	}

	slog.Info("Classifying transactions", "count", len(txns), "input", input)

	bar := progressbar.NewOptions(len(txns),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Classifying..."),
	)

	// Classify in batches so the bar advances as work completes.
	batchSize := viper.GetInt("llm.chunk_size_items")
	if batchSize <= 0 {
		batchSize = 15
	}
	results := make([]model.ClassificationResult, 0, len(txns))
	for start := 0; start < len(txns); start += batchSize {
		end := min(start+batchSize, len(txns))
		batch, err := eng.ClassifyBatch(ctx, txns[start:end])
		if err != nil {
			return fmt.Errorf("batch classification failed: %w", err)
		}
		results = append(results, batch...)
		_ = bar.Add(end - start)
	}
	fmt.Fprintln(os.Stderr)

	fmt.Println(cli.RenderSummary(txns, results))

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		slog.Info("Dry run, nothing saved")
		return nil
	}
	return saveResults(ctx, db, txns, results)
}

// storageSaver and classifier narrow the batch path's dependencies for tests.
type storageSaver interface {
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	SaveClassification(ctx context.Context, result *model.ClassificationResult) error
}

type classifier interface {
	ClassifyBatch(ctx context.Context, txns []model.Transaction) ([]model.ClassificationResult, error)
}

func saveResults(ctx context.Context, db storageSaver, txns []model.Transaction, results []model.ClassificationResult) error {
	if err := db.SaveTransactions(ctx, txns); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}
	for i := range results {
		if err := db.SaveClassification(ctx, &results[i]); err != nil {
			return fmt.Errorf("failed to save classification: %w", err)
		}
	}
	slog.Info("Results saved", "count", len(results))
	return nil
}

// loadTransactions reads a batch input file. JSON files hold an array of
// transactions; CSV files have date,description,amount columns with an
// optional header row.
func loadTransactions(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var txns []model.Transaction
		if err := json.NewDecoder(f).Decode(&txns); err != nil {
			return nil, fmt.Errorf("failed to parse JSON input: %w", err)
		}
		for i := range txns {
			if txns[i].ID == "" {
				txns[i].ID = uuid.NewString()
			}
			if txns[i].Currency == "" {
				txns[i].Currency = "INR"
			}
		}
		return txns, nil
	}

	return loadCSV(f)
}

func loadCSV(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var txns []model.Transaction
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("CSV line %d: expected date,description,amount", line)
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			if line == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("CSV line %d: invalid date %q", line, record[0])
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid amount %q", line, record[2])
		}

		txns = append(txns, model.Transaction{
			ID:          uuid.NewString(),
			Date:        date,
			Description: strings.TrimSpace(record[1]),
			Amount:      amount,
			Currency:    "INR",
		})
	}

	return txns, nil
}
