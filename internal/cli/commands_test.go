package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/partdb/internal/export"
	"github.com/roach88/partdb/internal/schema"
	"github.com/roach88/partdb/internal/testutil"
)

const boltLine = "1\tBolt\tACME\tX\tY\tM\tBox\t9.99\tn/a\n"

// dataFile writes content to a fresh data file and returns its path.
func dataFile(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteDataFile(t, "part.tbl", content)
}

// execute runs the root command with args and returns stdout, stderr and
// the error Execute returned.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func readData(t *testing.T, path string) string {
	t.Helper()
	return testutil.ReadFile(t, path)
}

type recordsResponse struct {
	Status string        `json:"status"`
	Data   RecordsResult `json:"data"`
	Error  *CLIError     `json:"error"`
}

func TestScenario_BoltToNut(t *testing.T) {
	path := dataFile(t, boltLine)

	out, _, err := execute(t, "", "-f", path, "search", "NAME", "bolt", "--format", "json")
	require.NoError(t, err)

	var resp recordsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "Bolt", resp.Data.Records[0]["NAME"])

	out, _, err = execute(t, "", "-f", path, "update", "1", "Nut", "ACME", "X", "Y", "S", "Bag", "0.10", "")
	require.NoError(t, err)
	assert.Equal(t, "updated PARTKEY 1\n", out)
	assert.Equal(t, "1\tNut\tACME\tX\tY\tS\tBag\t0.10\t\n", readData(t, path))

	out, _, err = execute(t, "", "-f", path, "delete", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]: no record with PARTKEY 2")
	assert.Equal(t, "1\tNut\tACME\tX\tY\tS\tBag\t0.10\t\n", readData(t, path))
}

func TestSearch_TextTable(t *testing.T) {
	path := dataFile(t, boltLine)

	out, _, err := execute(t, "", "-f", path, "search", "name", "BOLT")
	require.NoError(t, err)
	assert.Equal(t,
		"PARTKEY  NAME  MFGR  BRAND  TYPE  SIZE  CONTAINER  RETAILPRICE  COMMENT\n"+
			"1        Bolt  ACME  X      Y     M     Box        9.99         n/a\n",
		out)
}

func TestSearch_NoMatch(t *testing.T) {
	out, _, err := execute(t, "", "-f", dataFile(t, boltLine), "search", "TYPE", "Z")
	require.NoError(t, err)
	assert.Equal(t, "no matching records\n", out)
}

func TestSearch_InvalidField(t *testing.T) {
	path := dataFile(t, boltLine)

	out, _, err := execute(t, "", "-f", path, "search", "MFGR", "ACME", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp recordsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidField, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "PARTKEY, NAME, BRAND, TYPE")
}

func TestInsert(t *testing.T) {
	t.Run("explicit key", func(t *testing.T) {
		path := dataFile(t, boltLine)
		out, _, err := execute(t, "", "-f", path, "insert", "5", "Gear", "Acme", "B1", "T1", "12", "LG", "99.99", "steel gear")
		require.NoError(t, err)
		assert.Equal(t, "inserted PARTKEY 5\n", out)
		assert.Equal(t, boltLine+"5\tGear\tAcme\tB1\tT1\t12\tLG\t99.99\tsteel gear\n", readData(t, path))
	})

	t.Run("auto key", func(t *testing.T) {
		path := dataFile(t, boltLine)
		out, _, err := execute(t, "", "-f", path, "insert", "--auto-key", "Washer", "Globex", "X", "Flat", "L", "Jar", "", "zinc")
		require.NoError(t, err)
		assert.Equal(t, "inserted PARTKEY 2\n", out)
		assert.Equal(t, boltLine+"2\tWasher\tGlobex\tX\tFlat\tL\tJar\t\tzinc\n", readData(t, path))
	})

	t.Run("creates missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new.tbl")
		_, _, err := execute(t, "", "-f", path, "insert", "1", "Bolt", "ACME", "X", "Y", "M", "Box", "9.99", "n/a")
		require.NoError(t, err)
		assert.Equal(t, boltLine, readData(t, path))
	})

	t.Run("duplicate key", func(t *testing.T) {
		path := dataFile(t, boltLine)
		out, _, err := execute(t, "", "-f", path, "insert", "1", "Other", "A", "B", "C", "D", "E", "1", "")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "Error [E007]")
		assert.Equal(t, boltLine, readData(t, path))
	})

	t.Run("bad decimal", func(t *testing.T) {
		path := dataFile(t, boltLine)
		out, _, err := execute(t, "", "-f", path, "insert", "2", "Nut", "A", "B", "C", "D", "E", "cheap", "")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "Error [E005]")
		assert.Equal(t, boltLine, readData(t, path))
	})
}

func TestUpdate_Rejects(t *testing.T) {
	path := dataFile(t, boltLine)

	out, _, err := execute(t, "", "-f", path, "update", "1", "Nut")
	require.Error(t, err)
	assert.Contains(t, out, "expected 9 fields, got 2")

	out, _, err = execute(t, "", "-f", path, "update", "x", "Nut")
	require.Error(t, err)
	assert.Contains(t, out, `key: "x" is not a valid integer`)

	assert.Equal(t, boltLine, readData(t, path))
}

func TestDelete_JSON(t *testing.T) {
	path := dataFile(t, boltLine+"2\tNut\tACME\tX\tY\tS\tBag\t0.10\t\n")

	out, _, err := execute(t, "", "-f", path, "delete", "1", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   MutationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, MutationResult{Op: "delete", Key: 1, Applied: true}, resp.Data)
	assert.Equal(t, "2\tNut\tACME\tX\tY\tS\tBag\t0.10\t\n", readData(t, path))
}

func TestList(t *testing.T) {
	path := dataFile(t, boltLine+"2\tNut\tACME\tX\tY\tS\tBag\t0.10\t\n")

	out, _, err := execute(t, "", "-f", path, "list", "--limit", "1", "--format", "json")
	require.NoError(t, err)

	var resp recordsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "part", resp.Data.Schema)
	require.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "1", resp.Data.Records[0]["PARTKEY"])
}

func TestList_MissingFile(t *testing.T) {
	out, stderr, err := execute(t, "", "-f", filepath.Join(t.TempDir(), "absent.tbl"), "list")
	require.NoError(t, err)
	assert.Equal(t, "no records\n", out)
	assert.Contains(t, stderr, "backing file not found")
}

func TestUndecodableFile(t *testing.T) {
	path := dataFile(t, boltLine+"two\tNut\n")

	out, _, err := execute(t, "", "-f", path, "insert", "3", "A", "B", "C", "D", "E", "F", "1", "")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
	assert.Equal(t, boltLine+"two\tNut\n", readData(t, path), "file left alone")
}

func TestShell_DefaultCommand(t *testing.T) {
	path := dataFile(t, boltLine)

	out, _, err := execute(t, "search NAME bolt\nexit\n", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "partdb: 1 record(s), schema part")
	assert.Contains(t, out, "Bolt")
	assert.Contains(t, out, "bye")
}

func TestShell_UndecodableFileWarns(t *testing.T) {
	path := dataFile(t, "garbage\n")

	out, stderr, err := execute(t, "list\n", "shell", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "starting with no records")
	assert.Contains(t, out, "no records")
}

func TestExport(t *testing.T) {
	path := dataFile(t, boltLine+"2\tNut\tACME\tX\tY\tS\tBag\t0.10\t\n")
	dbPath := filepath.Join(t.TempDir(), "parts.db")

	out, _, err := execute(t, "", "-f", path, "export", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 record(s)")

	db, err := export.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.ReadCollection(context.Background(), schema.Part)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "Bolt", "ACME", "X", "Y", "M", "Box", "9.99", "n/a"}, rows[0])
}

func TestExport_MissingDBFlag(t *testing.T) {
	_, _, err := execute(t, "", "-f", dataFile(t, boltLine), "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "bins.txt")
	require.NoError(t, os.WriteFile(dataPath, []byte("1;Top shelf;2.5\n"), 0644))

	cfgPath := filepath.Join(dir, "partdb.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
file: `+dataPath+`
schema: bins
schemas:
  - name: bins
    delimiter: ";"
    fields:
      - {name: binkey, kind: integer, searchable: true}
      - {name: label, searchable: true}
      - {name: weight, kind: decimal}
`), 0644))

	out, _, err := execute(t, "", "--config", cfgPath, "search", "LABEL", "top shelf")
	require.NoError(t, err)
	assert.Contains(t, out, "BINKEY  LABEL      WEIGHT")

	out, _, err = execute(t, "", "--config", cfgPath, "schemas")
	require.NoError(t, err)
	assert.Contains(t, out, "bins (config, delimiter ';')")
	assert.Contains(t, out, "part (builtin, delimiter '\\t')")
}

func TestConfigFile_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "partdb.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: loud\n"), 0644))

	out, _, err := execute(t, "", "--config", cfgPath, "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestConfigFile_ExplicitMissing(t *testing.T) {
	_, _, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUnknownSchema(t *testing.T) {
	out, _, err := execute(t, "", "--schema", "nope", "-f", dataFile(t, ""), "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "unknown schema")
}

func TestVerboseLogsMutations(t *testing.T) {
	path := dataFile(t, boltLine)
	_, stderr, err := execute(t, "", "-v", "-f", path, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "record deleted")
	assert.Contains(t, stderr, "key=1")
}
