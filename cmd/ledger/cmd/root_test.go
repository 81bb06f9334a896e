package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investsim/ledger/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.DBPath = filepath.Join(dir, "ledger.db")
	cfg.Log.Level = "error"
	path := filepath.Join(dir, "ledger.yaml")
	require.NoError(t, cfg.SaveToFile(path))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ledger version "+version)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")

	out, err := run(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")
	assert.FileExists(t, path)

	out, err = run(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "$10,000.00")
	assert.Contains(t, out, "Store: sqlite")
}

func TestConfigValidateRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: mongo\n"), 0o644))

	_, err := run(t, "config", "validate", "-f", path)
	assert.Error(t, err)
}

func TestTradingSession(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "-c", cfgPath, "-u", "alice", "account")
	require.NoError(t, err)
	assert.Contains(t, out, "Cash:    $10,000.00")

	out, err = run(t, "-c", cfgPath, "-u", "alice", "buy", "AAPL", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "buy 10 AAPL @ $182.52 = $1,825.20")
	assert.Contains(t, out, "cash $8,174.80")

	_, err = run(t, "-c", cfgPath, "-u", "alice", "sell", "AAPL", "11")
	assert.Error(t, err)

	out, err = run(t, "-c", cfgPath, "-u", "alice", "transfer", "cash-to-savings", "174.80")
	require.NoError(t, err)
	assert.Contains(t, out, "Savings: $174.80")

	out, err = run(t, "-c", cfgPath, "-u", "alice", "deposit", "1000", "--tenure", "24")
	require.NoError(t, err)
	assert.Contains(t, out, "$1,000.00 for 24 months at 7.20%")
	assert.Contains(t, out, "cash $7,000.00")

	out, err = run(t, "-c", cfgPath, "-u", "alice", "portfolio")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "Fixed deposits $1,000.00")

	out, err = run(t, "-c", cfgPath, "-u", "alice", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "buy  AAPL")

	out, err = run(t, "-c", cfgPath, "-u", "alice", "export")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,created_at,type"))
	assert.Contains(t, lines[1], ",buy,AAPL,")

	out, err = run(t, "-c", cfgPath, "-u", "alice", "export", "--transfers")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestUnknownAccount(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := run(t, "-c", cfgPath, "-u", "nobody", "buy", "AAPL", "1")
	assert.Error(t, err)
}

func TestTradeHasNoPriceOverride(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := run(t, "-c", cfgPath, "buy", "AAPL", "1", "--price", "1")
	assert.ErrorContains(t, err, "unknown flag: --price")

	out, err := run(t, "-c", cfgPath, "account")
	require.NoError(t, err)
	assert.Contains(t, out, "$10,000.00")
}

func TestWalkAndMature(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "-c", cfgPath, "walk", "--steps", "3", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "MSFT")

	out, err = run(t, "-c", cfgPath, "mature")
	require.NoError(t, err)
	assert.Contains(t, out, "0 deposit(s) matured")
}

func TestReplayCommand(t *testing.T) {
	cfgPath := writeConfig(t)
	script := filepath.Join(t.TempDir(), "session.csv")
	require.NoError(t, os.WriteFile(script, []byte(`time,symbol,price,event,user,arg1,arg2
2025-01-10T09:30:00Z,,,OPEN,dave
2025-01-10T09:30:05Z,NVDA,500.00,BUY,dave,2
`), 0o644))

	out, err := run(t, "-c", cfgPath, "replay", script)
	require.NoError(t, err)
	assert.Contains(t, out, "replayed 2 rows: 1 prices, 2 events")

	out, err = run(t, "-c", cfgPath, "-u", "dave", "account")
	require.NoError(t, err)
	assert.Contains(t, out, "Cash:    $9,000.00")
}
