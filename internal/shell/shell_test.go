package shell

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/partdb/internal/crud"
	"github.com/roach88/partdb/internal/schema"
	"github.com/roach88/partdb/internal/store"
	"github.com/roach88/partdb/internal/testutil"
)

const boltLine = "1\tBolt\tACME\tX\tY\tM\tBox\t9.99\tn/a\n"

// run executes a scripted session against a store file holding content and
// returns the transcript and the file contents afterwards.
func run(t *testing.T, content, script string) (string, string) {
	t.Helper()
	path := testutil.WriteDataFile(t, "part.tbl", content)
	logger := testutil.DiscardLogger()
	st, err := store.Load(path, schema.Part, store.WithLogger(logger))
	require.NoError(t, err)
	svc := crud.New(st, crud.WithLogger(logger), crud.WithIDGenerator(crud.NewSequenceGenerator("op")))

	var out bytes.Buffer
	sh := New(svc, strings.NewReader(script), &out, WithLogger(logger))
	require.NoError(t, sh.Run(context.Background()))

	return out.String(), testutil.ReadFile(t, path)
}

func TestSession_Golden(t *testing.T) {
	script := strings.Join([]string{
		"list",
		"search NAME bolt",
		"search COLOR red",
		"update 1 Nut ACME X Y S Bag 0.10 n/a",
		"delete 2",
		"5",
		"exit",
	}, "\n") + "\n"

	out, file := run(t, boltLine, script)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "session", []byte(out))
	assert.Equal(t, "1\tNut\tACME\tX\tY\tS\tBag\t0.10\tn/a\n", file)
}

func TestInsertPrompted_AutoKey(t *testing.T) {
	// Blank PARTKEY takes the next key; blank RETAILPRICE is allowed.
	script := "1\n\nNut\nACME\nX\nY\nS\nBag\n\nhex\n"

	out, file := run(t, boltLine, script)
	assert.Contains(t, out, "PARTKEY [2]: ")
	assert.Contains(t, out, "inserted PARTKEY 2")
	assert.Contains(t, out, "bye")
	assert.Equal(t, boltLine+"2\tNut\tACME\tX\tY\tS\tBag\t\thex\n", file)
}

func TestInsert_IntoEmptyStore(t *testing.T) {
	out, file := run(t, "", "insert 1 Bolt ACME X Y M Box 9.99 'two words'\n")
	assert.Contains(t, out, "partdb: 0 record(s)")
	assert.Contains(t, out, "inserted PARTKEY 1")
	assert.Equal(t, "1\tBolt\tACME\tX\tY\tM\tBox\t9.99\ttwo words\n", file)
}

func TestInsert_Rejected(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"duplicate", "insert 1 Other A B C D E 1 x", "insert: key 1: duplicate key"},
		{"field count", "insert 2 Nut", "expected 9 fields, got 2"},
		{"bad price", "insert 2 Nut A B C D E cheap x", `RETAILPRICE: "cheap" is not a valid decimal`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, file := run(t, boltLine, tt.line+"\n")
			assert.Contains(t, out, "error: "+tt.want)
			assert.Equal(t, boltLine, file)
		})
	}
}

func TestSearchPrompted_RejectsFieldBeforeValue(t *testing.T) {
	out, _ := run(t, boltLine, "2\nCOMMENT\n")
	assert.Contains(t, out, "Field (PARTKEY, NAME, BRAND, TYPE): ")
	assert.Contains(t, out, `error: invalid field name "COMMENT"`)
	assert.NotContains(t, out, "Value: ")
}

func TestSearchPrompted_NoMatch(t *testing.T) {
	out, _ := run(t, boltLine, "2\nbrand\nZ\n")
	assert.Contains(t, out, "no matching records")
}

func TestUpdatePrompted_BlankKeepsCurrent(t *testing.T) {
	script := "3\n1\nHex Bolt\n\n\n\n\n\n12.50\n\n"

	out, file := run(t, boltLine, script)
	assert.Contains(t, out, "NAME [Bolt]: ")
	assert.Contains(t, out, "RETAILPRICE [9.99]: ")
	assert.Contains(t, out, "updated PARTKEY 1")
	assert.Equal(t, "1\tHex Bolt\tACME\tX\tY\tM\tBox\t12.50\tn/a\n", file)
}

func TestUpdatePrompted_InvalidKeepsOriginal(t *testing.T) {
	script := "3\n1\n\n\n\n\n\n\nlots\n\n"

	out, file := run(t, boltLine, script)
	assert.Contains(t, out, "record unchanged")
	assert.Equal(t, boltLine, file)
}

func TestUpdatePrompted_UnknownKey(t *testing.T) {
	out, _ := run(t, boltLine, "3\n9\n")
	assert.Contains(t, out, "no record with PARTKEY 9")
	assert.NotContains(t, out, "NAME [")
}

func TestDeletePrompted_Confirm(t *testing.T) {
	content := boltLine + "2\tNut\tACME\tX\tY\tS\tBag\t0.10\t\n"

	out, file := run(t, content, "4\n1\nn\n4\n1\ny\n")
	assert.Contains(t, out, "kept PARTKEY 1")
	assert.Contains(t, out, "deleted PARTKEY 1")
	assert.Equal(t, "2\tNut\tACME\tX\tY\tS\tBag\t0.10\t\n", file)
}

func TestBadInput(t *testing.T) {
	out, _ := run(t, boltLine, "frobnicate\ndelete abc\nsearch NAME 'open\n\n")
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, `key: "abc" is not a valid integer`)
	assert.Contains(t, out, "Unterminated")
}

func TestSave(t *testing.T) {
	out, _ := run(t, boltLine, "save\n")
	assert.Contains(t, out, "saved 1 record(s)")
}

func TestHelp(t *testing.T) {
	out, _ := run(t, boltLine, "help\n")
	assert.Contains(t, out, "search <PARTKEY|NAME|BRAND|TYPE> <value>")
	assert.Contains(t, out, "delete <PARTKEY>")
}

func TestPersistFailureReported(t *testing.T) {
	logger := testutil.DiscardLogger()
	st := store.New(filepath.Join(t.TempDir(), "gone", "part.tbl"), schema.Part, store.WithLogger(logger))
	svc := crud.New(st, crud.WithLogger(logger))

	var out bytes.Buffer
	sh := New(svc, strings.NewReader("insert 1 Bolt ACME X Y M Box 9.99 n/a\nlist\n"), &out, WithLogger(logger))
	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, out.String(), "inserted PARTKEY 1 in memory, not saved")
	assert.Contains(t, out.String(), "Bolt")
	assert.Equal(t, 1, svc.Len())
}

func TestRun_ContextCanceled(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "part.tbl"), schema.Part)
	svc := crud.New(st)

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(svc, pr, io.Discard).Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not stop after cancel")
	}
}

func TestRun_InputSurvivesCanceledRun(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "part.tbl"), schema.Part)
	pr, pw := io.Pipe()
	defer pw.Close()
	sh := New(crud.New(st, crud.WithLogger(testutil.DiscardLogger())), pr, io.Discard)

	// The first run is canceled while it waits for input.
	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- sh.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-first:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not stop after cancel")
	}

	// The next line typed must reach the second run.
	second := make(chan error, 1)
	go func() { second <- sh.Run(context.Background()) }()
	_, err := io.WriteString(pw, "exit\n")
	require.NoError(t, err)

	select {
	case err := <-second:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("line was consumed by the canceled run")
	}
}
