package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hakuto4838/skipkv/skiplist/arena"
	"github.com/Hakuto4838/skipkv/store"
	"github.com/fatih/color"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, path string) (*CLI, *arena.ArenaSkipList[string, string], *bytes.Buffer, func()) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	color.NoColor = true

	sl := arena.NewArenaSkipList[string, string](1)
	var st *store.Store[string, string]
	if path != "" {
		st = store.NewStringStore(path)
	}
	var out bytes.Buffer
	return New(sl, st, &out), sl, &out, teardown
}

func TestInsertSearchGetDelete(t *testing.T) {
	cli, sl, out, teardown := setup(t, "")
	defer teardown()

	cli.Exec("insert a 1")
	assert.Contains(t, out.String(), "Key: a Value: 1 insert success!")
	out.Reset()

	cli.Exec("insert a 2")
	assert.Contains(t, out.String(), "Key: a Value: 2 updated!")
	assert.Equal(t, 1, sl.Size())
	out.Reset()

	cli.Exec("search a")
	assert.Contains(t, out.String(), "Key: a searched!")
	out.Reset()

	cli.Exec("get a")
	assert.Contains(t, out.String(), "Key: a's value is 2")
	out.Reset()

	cli.Exec("delete a")
	assert.Contains(t, out.String(), "Key: a deleted!")
	out.Reset()

	cli.Exec("delete a")
	assert.Contains(t, out.String(), "skiplist not exists the key: a")
	out.Reset()

	cli.Exec("get a")
	assert.Contains(t, out.String(), "Key: a not exists!")
	out.Reset()

	cli.Exec("search a")
	assert.Contains(t, out.String(), "Key: a not exists!")
	assert.Equal(t, 0, sl.Size())
}

func TestBadArgumentCount(t *testing.T) {
	cli, sl, out, teardown := setup(t, "")
	defer teardown()

	cli.Exec("insert onlykey")
	assert.Contains(t, out.String(), "Bad argument count!")
	assert.Equal(t, 0, sl.Size())
	assert.True(t, cli.IsRunning())
	out.Reset()

	cli.Exec("table x")
	assert.Contains(t, out.String(), "Bad argument value(s)!")
	out.Reset()

	// 錯誤之後仍可繼續
	cli.Exec("insert k v")
	assert.Contains(t, out.String(), "insert success!")
	assert.NotContains(t, out.String(), "Bad argument")
}

func TestDisplayOnUnknownCommand(t *testing.T) {
	cli, _, out, teardown := setup(t, "")
	defer teardown()

	cli.Exec("insert a 1")
	cli.Exec("insert b 2")
	out.Reset()
	cli.Exec("show me")
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "********skiplist*********\n"))
	assert.Contains(t, s, "Level 0: a:1;b:2;\n")
	assert.True(t, strings.HasSuffix(s, "*************************\n"))
}

func TestDumpAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dumpFile")
	cli, sl, out, teardown := setup(t, path)
	defer teardown()

	cli.Exec("insert x 10")
	cli.Exec("insert y 20")
	out.Reset()
	cli.Exec("dump")
	assert.Contains(t, out.String(), "Already saved skiplist. (2 records")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "x:10;\ny:20;\n")

	cli.Exec("clear")
	assert.Equal(t, 0, sl.Size())
	cli.Exec("insert y 99")
	out.Reset()

	cli.Exec("load")
	assert.Contains(t, out.String(), "Loaded 2 records (1 new, 1 updated)")
	v, ok := sl.Get("y")
	assert.True(t, ok)
	assert.Equal(t, "20", v)
}

func TestLoadMissingFileReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")
	cli, sl, out, teardown := setup(t, path)
	defer teardown()

	cli.Exec("insert keep me")
	out.Reset()
	cli.Exec("load")
	assert.Contains(t, out.String(), "load failed:")
	assert.Equal(t, 1, sl.Size())
	assert.True(t, cli.IsRunning())
}

func TestNoStoreConfigured(t *testing.T) {
	cli, _, out, teardown := setup(t, "")
	defer teardown()

	cli.Exec("dump")
	assert.Contains(t, out.String(), "dump failed:")
	assert.Contains(t, out.String(), store.ErrNoPath.Error())
}

func TestRunUntilQuit(t *testing.T) {
	cli, sl, out, teardown := setup(t, "")
	defer teardown()
	cli.SetPrompt("> ")

	input := "insert a 1\ninsert b 2\nsize\nstats\nquit\ninsert c 3\n"
	require.NoError(t, cli.Run(strings.NewReader(input)))
	assert.False(t, cli.IsRunning())
	assert.Equal(t, 2, sl.Size(), "commands after quit must not run")
	assert.Contains(t, out.String(), "size: 2")
	assert.Contains(t, out.String(), "> ")
	assert.Contains(t, strings.ToLower(out.String()), "total")
}

func TestRunStopsAtEOF(t *testing.T) {
	cli, sl, out, teardown := setup(t, "")
	defer teardown()

	require.NoError(t, cli.Run(strings.NewReader("insert a 1\nhelp\ntable 1")))
	assert.Equal(t, 1, sl.Size())
	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "#1")
	assert.True(t, cli.IsRunning())
}
