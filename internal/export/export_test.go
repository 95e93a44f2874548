package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/storage/models"
)

const testMint = "FWaRpuDUhNbDxKgacKBht4mP85LVaohty6V2WD1XShrX"

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func history() []*models.Transaction {
	return []*models.Transaction{
		{Signature: "s3", Action: models.ActionSell, Mint: testMint, AmountA: decimal.NewFromInt(100), SymbolA: "QSHX",
			AmountB: decimal.RequireFromString("0.2"), SymbolB: "SOL", Status: models.StatusConfirmed, CreatedAt: base.Add(2 * time.Hour)},
		{Signature: "s1", Action: models.ActionBuy, Mint: testMint, AmountA: decimal.NewFromInt(500), SymbolA: "QSHX",
			AmountB: decimal.RequireFromString("0.5"), SymbolB: "SOL", Status: models.StatusConfirmed, CreatedAt: base},
		{Signature: "s2", Action: models.ActionBuy, Mint: "Other1111111111111111111111111111111111111", SymbolA: "OTH",
			AmountB: decimal.NewFromInt(1), SymbolB: "SOL", Status: models.StatusFailed, ErrorMessage: "slippage", CreatedAt: base.Add(time.Hour)},
		{Signature: "s4", Action: models.ActionCreate, Mint: "New11111111111111111111111111111111111111111", SymbolA: "NEW",
			AmountB: decimal.RequireFromString("0.1"), SymbolB: "SOL", Status: models.StatusSent, CreatedAt: base.Add(3 * time.Hour)},
	}
}

func TestFilter(t *testing.T) {
	all := Filter(history(), Options{})
	require.Len(t, all, 4)
	assert.Equal(t, "s1", all[0].Signature)
	assert.Equal(t, "s4", all[3].Signature)

	buys := Filter(history(), Options{Action: models.ActionBuy})
	assert.Len(t, buys, 2)

	confirmed := Filter(history(), Options{OnlyConfirmed: true, Mint: testMint})
	require.Len(t, confirmed, 2)

	window := Filter(history(), Options{StartTime: base.Add(30 * time.Minute), EndTime: base.Add(150 * time.Minute)})
	require.Len(t, window, 2)
	assert.Equal(t, "s2", window[0].Signature)
}

func TestSummarize(t *testing.T) {
	s := Summarize(Filter(history(), Options{}))
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Confirmed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 2, s.BuyCount)
	assert.Equal(t, 1, s.SellCount)
	assert.Equal(t, 1, s.CreateCount)
	assert.Equal(t, 3, s.UniqueMints)
	assert.True(t, s.Spent["SOL"].Equal(decimal.RequireFromString("0.5")))
	assert.True(t, s.Received["SOL"].Equal(decimal.RequireFromString("0.2")))
	assert.Equal(t, base, s.StartDate)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Filter(history(), Options{})))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, CSVHeaders(), rows[0])
	assert.Equal(t, "s1", rows[1][1])
	assert.Equal(t, "0.5", rows[1][8])
	assert.Equal(t, "slippage", rows[2][11])
}

func TestExportJSONFile(t *testing.T) {
	e := NewExporter(zaptest.NewLogger(t))
	e.now = func() time.Time { return base }
	dir := filepath.Join(t.TempDir(), "out")

	path, err := e.Export(history(), Options{Format: FormatJSON, Action: models.ActionBuy, Mint: testMint, OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history_buy_FWaRpuDU_20260301_120000.json"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Count   int     `json:"count"`
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.Equal(t, 1, doc.Count)
	assert.Equal(t, 1, doc.Summary.Confirmed)
}

func TestExportNothingMatches(t *testing.T) {
	e := NewExporter(zaptest.NewLogger(t))
	_, err := e.Export(history(), Options{Format: FormatCSV, Mint: "missing", OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no transactions"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
