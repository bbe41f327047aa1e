package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilename(t *testing.T) {
	valid := []string{
		"fintech_growth_digest_FULL.csv",
		"esg_sentiment_tracker_2025_Q1.csv",
		"supply_chain_risk_2025_01.csv",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateFilename(name), name)
	}

	invalid := []string{
		"",
		"../../etc/passwd",
		"../fintech_growth_digest_FULL.csv",
		"bundles/fintech_growth_digest_FULL.csv",
		"/etc/passwd",
		"fintech_growth_digest_FULL.csv.exe",
		"fintech growth digest.csv",
		"fintech-growth-digest.csv",
		"status.json",
		"fintech_growth_digest_FULL.CSV",
	}
	for _, name := range invalid {
		assert.Error(t, ValidateFilename(name), name)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "monthly"), 0o755))
	want := filepath.Join(dir, "monthly", "fintech_growth_digest_2025_01.csv")
	require.NoError(t, os.WriteFile(want, []byte("a,b\n1,2\n"), 0o644))

	got, err := Resolve(dir, "fintech_growth_digest_2025_01.csv")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve(t.TempDir(), "fintech_growth_digest_2099_01.csv")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestResolve_TraversalRejectedBeforeLookup(t *testing.T) {
	dir := t.TempDir()
	// a file reachable only via traversal must never resolve
	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("nope"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data", "bundles"), 0o755))

	_, err := Resolve(filepath.Join(dir, "data"), "../secret.txt")
	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrNotFound)) // rejected by validation, not lookup
}
