// Package export writes transaction history to CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/storage/models"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Options configures the export behavior
type Options struct {
	Format        Format
	StartTime     time.Time
	EndTime       time.Time
	Mint          string // Filter by token mint
	Action        string // buy, sell, create
	OnlyConfirmed bool
	OutputDir     string
}

// Exporter handles history export
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates a new exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger, now: time.Now}
}

// Export filters txs and writes them to a new file in opts.OutputDir.
// It returns the file path.
func (e *Exporter) Export(txs []*models.Transaction, opts Options) (string, error) {
	filtered := Filter(txs, opts)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no transactions match the export criteria")
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(opts.OutputDir, e.filename(opts))

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	switch opts.Format {
	case FormatCSV:
		err = WriteCSV(file, filtered)
	case FormatJSON:
		err = WriteJSON(file, filtered, e.now())
	default:
		err = fmt.Errorf("unsupported format: %s", opts.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Transactions exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(opts.Format)))
	return outputPath, nil
}

// Filter applies opts and returns the matches oldest first.
func Filter(txs []*models.Transaction, opts Options) []*models.Transaction {
	var out []*models.Transaction
	for _, tx := range txs {
		if !opts.StartTime.IsZero() && tx.CreatedAt.Before(opts.StartTime) {
			continue
		}
		if !opts.EndTime.IsZero() && tx.CreatedAt.After(opts.EndTime) {
			continue
		}
		if opts.Mint != "" && tx.Mint != opts.Mint {
			continue
		}
		if opts.Action != "" && tx.Action != opts.Action {
			continue
		}
		if opts.OnlyConfirmed && tx.Status != models.StatusConfirmed {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (e *Exporter) filename(opts Options) string {
	prefix := "history_all"
	if opts.Action != "" {
		prefix = "history_" + opts.Action
	}
	if len(opts.Mint) >= 8 {
		prefix += "_" + opts.Mint[:8]
	}
	return fmt.Sprintf("%s_%s.%s", prefix, e.now().Format("20060102_150405"), opts.Format)
}

// CSVHeaders are the columns written by WriteCSV.
func CSVHeaders() []string {
	return []string{"time", "signature", "wallet", "action", "mint", "platform_id",
		"amount_a", "symbol_a", "amount_b", "symbol_b", "status", "error"}
}

// WriteCSV writes one row per transaction.
func WriteCSV(w io.Writer, txs []*models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.CreatedAt.UTC().Format(time.RFC3339),
			tx.Signature,
			tx.WalletAddress,
			tx.Action,
			tx.Mint,
			tx.PlatformID,
			tx.AmountA.String(),
			tx.SymbolA,
			tx.AmountB.String(),
			tx.SymbolB,
			tx.Status,
			tx.ErrorMessage,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write transaction: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Summary contains statistics for exported transactions
type Summary struct {
	Total       int                        `json:"total"`
	Confirmed   int                        `json:"confirmed"`
	Failed      int                        `json:"failed"`
	Pending     int                        `json:"pending"`
	BuyCount    int                        `json:"buy_count"`
	SellCount   int                        `json:"sell_count"`
	CreateCount int                        `json:"create_count"`
	UniqueMints int                        `json:"unique_mints"`
	Spent       map[string]decimal.Decimal `json:"spent"`    // quote token -> amount paid in confirmed buys and creates
	Received    map[string]decimal.Decimal `json:"received"` // quote token -> minimum received in confirmed sells
	StartDate   time.Time                  `json:"start_date"`
	EndDate     time.Time                  `json:"end_date"`
}

// Summarize computes statistics over txs, which must be sorted oldest first.
func Summarize(txs []*models.Transaction) Summary {
	s := Summary{
		Total:    len(txs),
		Spent:    map[string]decimal.Decimal{},
		Received: map[string]decimal.Decimal{},
	}
	if len(txs) == 0 {
		return s
	}
	s.StartDate = txs[0].CreatedAt
	s.EndDate = txs[len(txs)-1].CreatedAt

	mints := make(map[string]bool)
	for _, tx := range txs {
		mints[tx.Mint] = true
		switch tx.Action {
		case models.ActionBuy:
			s.BuyCount++
		case models.ActionSell:
			s.SellCount++
		case models.ActionCreate:
			s.CreateCount++
		}

		switch tx.Status {
		case models.StatusConfirmed:
			s.Confirmed++
		case models.StatusFailed:
			s.Failed++
			continue
		default:
			s.Pending++
			continue
		}

		if tx.SymbolB == "" || !tx.AmountB.IsPositive() {
			continue
		}
		if tx.Action == models.ActionSell {
			s.Received[tx.SymbolB] = s.Received[tx.SymbolB].Add(tx.AmountB)
		} else {
			s.Spent[tx.SymbolB] = s.Spent[tx.SymbolB].Add(tx.AmountB)
		}
	}
	s.UniqueMints = len(mints)
	return s
}

// WriteJSON writes txs with a summary block.
func WriteJSON(w io.Writer, txs []*models.Transaction, exportedAt time.Time) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	data := struct {
		ExportTime   time.Time             `json:"export_time"`
		Count        int                   `json:"count"`
		Summary      Summary               `json:"summary"`
		Transactions []*models.Transaction `json:"transactions"`
	}{
		ExportTime:   exportedAt,
		Count:        len(txs),
		Summary:      Summarize(txs),
		Transactions: txs,
	}
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
