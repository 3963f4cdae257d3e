package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const seedYAML = `cheese_types:
  - Soft
  - Gouda
cheese:
  - title: Brie
    cheese_type: Soft
    packaging_type: wrapped
  - title: Old Amsterdam
    cheese_type: Gouda
    packaging_type: waxed
  - title: Beemster
    cheese_type: Gouda
    packaging_type: vacuum_packed
`

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--driver", "sqlite", "--db-path", dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedAndList(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cheese.db")
	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedYAML), 0o600))

	out, err := run(t, dbPath, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "schema up to date")

	out, err = run(t, dbPath, "seed", "-f", seedPath)
	require.NoError(t, err)
	require.Contains(t, out, "cheese types: 2 created, 0 skipped")
	require.Contains(t, out, "cheese: 3 created, 0 skipped")

	out, err = run(t, dbPath, "seed", "-f", seedPath)
	require.NoError(t, err)
	require.Contains(t, out, "cheese types: 0 created, 2 skipped")
	require.Contains(t, out, "cheese: 0 created, 3 skipped")

	out, err = run(t, dbPath, "list", "--type", "Gouda")
	require.NoError(t, err)
	var gouda []listedCheese
	require.NoError(t, json.Unmarshal([]byte(out), &gouda), out)
	require.Len(t, gouda, 2)
	require.Equal(t, "Old Amsterdam", gouda[0].Title)
	require.Equal(t, "Beemster", gouda[1].Title)

	out, err = run(t, dbPath, "list", "--packaging", "wrapped")
	require.NoError(t, err)
	var wrapped []listedCheese
	require.NoError(t, json.Unmarshal([]byte(out), &wrapped), out)
	require.Len(t, wrapped, 1)
	require.Equal(t, "Brie", wrapped[0].Title)

	out, err = run(t, dbPath, "list", "--types")
	require.NoError(t, err)
	var types []struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &types), out)
	require.Len(t, types, 2)
	require.Equal(t, "Soft", types[0].Name)
}

func TestListRejectsUnknownPackaging(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cheese.db")
	_, err := run(t, dbPath, "list", "--packaging", "tin")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown packaging type")
}

func TestSeedMissingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cheese.db")
	_, err := run(t, dbPath, "seed", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestAuditEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cheese.db")
	out, err := run(t, dbPath, "audit", "-n", "5")
	require.NoError(t, err)
	require.Empty(t, out)
}
