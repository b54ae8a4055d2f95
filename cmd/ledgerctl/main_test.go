package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const bundleJSON = `{
  "exportDate": "2024-03-01T00:00:00Z",
  "shops": [{"id": "s1", "name": "Acme"}],
  "products": [{"id": "p1", "name": "Widget", "manufacturingCost": 4, "defaultRetailPrice": 10}],
  "bills": [
    {"id": "b1", "shopName": "Acme", "invoiceNumber": "INV-1", "date": "2024-01-15", "totalAmount": 1000, "createdAt": 1,
     "items": [{"id": "i1", "productName": "Widget", "retailPrice": 10, "quantity": 100, "total": 1000}]},
    {"id": "b2", "shopName": "Acme", "invoiceNumber": "INV-2", "date": "2024-02-03", "totalAmount": 20, "createdAt": 2,
     "items": [{"id": "i2", "productName": "Coke", "retailPrice": 2, "quantity": 10, "total": 20}]}
  ]
}`

func writeBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(bundleJSON), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(&out)
	a.ExitErrHandler = func(*cli.Context, error) {}
	err := a.Run(append([]string{"ledgerctl"}, args...))
	return out.String(), err
}

func TestValidate_ReportsUnknownProduct(t *testing.T) {
	out, err := run(t, "validate", writeBundle(t))

	require.Error(t, err)
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.ExitCode())
	assert.Contains(t, out, "b2 (2024-02-03 Acme)")
	assert.Contains(t, out, `"Coke"`)
	assert.NotContains(t, out, "b1 ")
}

func TestReport_FromFile(t *testing.T) {
	out, err := run(t, "report", "--file", writeBundle(t), "--end", "2024-01-31")
	require.NoError(t, err)

	var m ledger.Metrics
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.True(t, m.TotalRevenue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, m.TotalCost.Equal(decimal.NewFromInt(400)))
	assert.True(t, m.GrossProfit.Equal(decimal.NewFromInt(600)))
	assert.True(t, m.Margin.Equal(decimal.RequireFromString("0.6")))
	require.Len(t, m.MonthlyTrend, 1)
	assert.Equal(t, "2024-01", m.MonthlyTrend[0].Month)
}

func TestReport_UnknownProductCostsNothing(t *testing.T) {
	out, err := run(t, "report", "--file", writeBundle(t), "--start", "2024-02-01")
	require.NoError(t, err)

	var m ledger.Metrics
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.True(t, m.TotalCost.IsZero())
	assert.True(t, m.GrossProfit.Equal(decimal.NewFromInt(20)))
	require.Len(t, m.MonthlyTrend, 1)
	assert.Equal(t, "2024-02", m.MonthlyTrend[0].Month)
}

func TestReport_RejectsBadDate(t *testing.T) {
	_, err := run(t, "report", "--file", writeBundle(t), "--start", "2024-13-01")
	assert.Error(t, err)
}

func TestExportImport_MemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	out, err := run(t, "import", writeBundle(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"bills": 2`)

	// Each invocation opens a fresh in-memory store.
	out, err = run(t, "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"bills": []`)
}
